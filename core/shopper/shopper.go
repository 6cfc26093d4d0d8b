package shopper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/listing"
	"github.com/sirupsen/logrus"
)

// Shopper is the state kept for one session.
type Shopper struct {
	ID      string
	Cart    *cart.Store
	Listing *listing.Listing

	badge      atomic.Int64
	lastAccess atomic.Int64
	unsub      func()
}

// Badge is the number of units in the cart, as shown in the header.
func (s *Shopper) Badge() int { return int(s.badge.Load()) }

func (s *Shopper) touch(now time.Time) { s.lastAccess.Store(now.UnixNano()) }

func (s *Shopper) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastAccess.Load()))
}

func (s *Shopper) close() {
	s.unsub()
	s.Listing.Close()
}

type Config struct {
	Catalog  listing.Fetcher
	Debounce time.Duration
	Expiry   time.Duration
	Log      logrus.FieldLogger
}

// Registry hands out the Shopper of each session id and drops shoppers
// idle for longer than Expiry.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	shoppers map[string]*Shopper
	now      func() time.Time
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		shoppers: make(map[string]*Shopper),
		now:      time.Now,
	}
}

// Get returns the shopper for id, creating it on first use.
func (r *Registry) Get(id string) *Shopper {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.shoppers[id]; ok {
		s.touch(now)
		return s
	}

	s := &Shopper{
		ID:      id,
		Cart:    cart.NewStore(),
		Listing: listing.New(r.cfg.Catalog, r.cfg.Debounce),
	}
	s.touch(now)

	log := r.cfg.Log.WithField("shopper", id)
	s.unsub = s.Cart.Subscribe(func(snap cart.Snapshot) {
		s.badge.Store(int64(snap.Count()))
		log.WithFields(logrus.Fields{
			"version": snap.Version,
			"lines":   snap.Len(),
			"units":   snap.Count(),
		}).Debug("cart updated")
	})

	r.shoppers[id] = s
	log.Debug("shopper created")
	return s
}

// Len is the number of live shoppers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.shoppers)
}

// Sweep disposes of every shopper idle for longer than Expiry and returns
// how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*Shopper
	for id, s := range r.shoppers {
		if s.idle(now) > r.cfg.Expiry {
			expired = append(expired, s)
			delete(r.shoppers, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}

	if len(expired) > 0 {
		r.cfg.Log.WithField("expired", len(expired)).Info("swept idle shoppers")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then disposes of every
// remaining shopper.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	all := r.shoppers
	r.shoppers = make(map[string]*Shopper)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

type ctxKey int

const shopperKey ctxKey = 1

func Set(ctx context.Context, s *Shopper) context.Context {
	return context.WithValue(ctx, shopperKey, s)
}

func Get(ctx context.Context) (*Shopper, error) {
	v, ok := ctx.Value(shopperKey).(*Shopper)
	if !ok {
		return nil, errors.New("shopper missing from context")
	}
	return v, nil
}
