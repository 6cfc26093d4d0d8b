package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store owns the line items of one cart. Every state change publishes a
// new Snapshot; readers only ever see whole snapshots.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
	subs map[int]func(Snapshot)
	next int

	// notify serializes mutations with their notifications, so
	// subscribers see snapshots in mutation order. It is taken before mu.
	notify sync.Mutex
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// Add puts qty units of it in the cart. A line with the same id has its
// quantity increased; otherwise a new line is appended. A qty below 1
// adds a single unit. A line never holds more than MaxQuantity units.
func (s *Store) Add(it Item, qty int) {
	qty = clamp(qty)

	s.mutate(func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID == it.ID {
				if items[i].Quantity >= MaxQuantity {
					return items, false
				}
				items[i].Quantity = clamp(items[i].Quantity + qty)
				return items, true
			}
		}
		return append(items, LineItem{Item: it, Quantity: qty}), true
	})
}

// Remove deletes the line with the given id, if any.
func (s *Store) Remove(id int) {
	s.mutate(func(items []LineItem) ([]LineItem, bool) {
		return remove(items, id)
	})
}

// UpdateQuantity sets the quantity of the line with the given id. A qty
// of zero or less removes the line; one above MaxQuantity sets
// MaxQuantity. Unknown ids are ignored.
func (s *Store) UpdateQuantity(id int, qty int) {
	s.mutate(func(items []LineItem) ([]LineItem, bool) {
		if qty <= 0 {
			return remove(items, id)
		}
		qty = clamp(qty)

		for i := range items {
			if items[i].ID == id {
				if items[i].Quantity == qty {
					return items, false
				}
				items[i].Quantity = qty
				return items, true
			}
		}
		return items, false
	})
}

func (s *Store) Clear() {
	s.mutate(func(items []LineItem) ([]LineItem, bool) {
		return nil, len(items) > 0
	})
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snap
}

func (s *Store) Total() decimal.Decimal { return s.Snapshot().Total() }

func (s *Store) Count() int { return s.Snapshot().Count() }

// Subscribe registers fn to be called with every new snapshot. fn may read
// the store but must not mutate it. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// mutate runs fn over a private copy of the current items and, when fn
// reports a change, publishes the result as the next version.
func (s *Store) mutate(fn func([]LineItem) ([]LineItem, bool)) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()

	items := make([]LineItem, len(s.snap.Items))
	copy(items, s.snap.Items)

	items, changed := fn(items)
	if !changed {
		s.mu.Unlock()
		return
	}

	s.snap = Snapshot{Version: s.snap.Version + 1, Items: items}
	snap := s.snap

	subs := make([]func(Snapshot), 0, len(s.subs))
	for id := 0; id < s.next; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// clamp bounds a quantity to [1, MaxQuantity]. Sums of two clamped
// quantities cannot overflow.
func clamp(qty int) int {
	switch {
	case qty < 1:
		return 1
	case qty > MaxQuantity:
		return MaxQuantity
	}
	return qty
}

func remove(items []LineItem, id int) ([]LineItem, bool) {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}
