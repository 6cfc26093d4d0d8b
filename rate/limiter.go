package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client and forgets clients that
// have been quiet for longer than Expiry.
type Limiter struct {
	Expiry   time.Duration
	Burst    int
	LimitRPS float64
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	stop     chan struct{}
	once     sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		Expiry:   expiry,
		LimitRPS: limitRPS,
		Burst:    burst,
		clients:  make(map[string]*clientLimiter),
		stop:     make(chan struct{}),
	}
	go lm.refresh()
	return lm
}

// Check reports whether client id may make a request now.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(l.LimitRPS), l.Burst),
		}
		l.clients[id] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// Close stops forgetting idle clients.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) refresh() {
	interval := time.Minute
	if l.Expiry < interval {
		interval = l.Expiry
	}
	if interval <= 0 {
		interval = time.Minute
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
		}

		l.mu.Lock()
		for id, v := range l.clients {
			if time.Since(v.lastAccess) > l.Expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

func (l *Limiter) clientCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
