// Package listing holds the product list view of one shopper: what was
// loaded from the catalog, the selected filters and the visible products.
package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/debounce"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Ready   Status = "ready"
	Empty   Status = "empty"
	Failed  Status = "error"
)

// Fetcher is the part of the catalog a listing loads from.
type Fetcher interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type View struct {
	Status        Status            `json:"status"`
	Error         string            `json:"error,omitempty"`
	Categories    []string          `json:"categories"`
	Category      string            `json:"category"`
	Search        string            `json:"search"`
	PendingSearch *string           `json:"pendingSearch,omitempty"`
	Count         int               `json:"count"`
	Products      []catalog.Product `json:"products"`
}

type Listing struct {
	fetcher  Fetcher
	debounce *debounce.Debouncer

	mu         sync.Mutex
	inFlight   bool
	loaded     bool
	err        error
	all        []catalog.Product
	categories []string
	category   string
	search     string
	pending    *string
	searches   uint64
	visible    []catalog.Product
	loads      uint64
	closed     bool
}

// New builds an idle listing. Search text is applied once it has been
// stable for wait.
func New(f Fetcher, wait time.Duration) *Listing {
	return &Listing{
		fetcher:    f,
		debounce:   debounce.New(wait),
		category:   catalog.AllCategories,
		categories: []string{},
		all:        []catalog.Product{},
		visible:    []catalog.Product{},
	}
}

// Load fetches the products and categories. While it runs the listing is
// Loading. A failure leaves the listing Failed with no products and is
// returned to the caller. The result is dropped if the listing was closed
// or a newer Load started in the meantime.
func (l *Listing) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.loads++
	gen := l.loads
	l.inFlight = true
	l.mu.Unlock()

	products, categories, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.loads {
		return nil
	}

	l.inFlight = false
	l.loaded = true
	l.err = err

	if err != nil {
		l.all = []catalog.Product{}
		l.categories = []string{}
		l.refilter()
		return fmt.Errorf("loading listing: %w", err)
	}

	l.all = products
	l.categories = categories
	l.refilter()
	return nil
}

func (l *Listing) fetch(ctx context.Context) ([]catalog.Product, []string, error) {
	var (
		ps []catalog.Product
		cs []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ps, err = l.fetcher.Products(ctx); err != nil {
			return fmt.Errorf("fetching products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if cs, err = l.fetcher.Categories(ctx); err != nil {
			return fmt.Errorf("fetching categories: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ps, cs, nil
}

// Loaded reports whether a Load has started.
func (l *Listing) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inFlight || l.loaded
}

// SelectCategory applies category right away.
func (l *Listing) SelectCategory(category string) {
	if category == "" {
		category = catalog.AllCategories
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.category = category
	l.refilter()
}

// Search records text and applies it once no other Search arrives within
// the debounce window.
func (l *Listing) Search(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.searches++
	gen := l.searches
	l.pending = &text
	l.debounce.Trigger(func() { l.applySearch(text, gen) })
}

// applySearch runs for the search of generation gen. A newer Search
// supersedes it.
func (l *Listing) applySearch(text string, gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.searches {
		return
	}

	l.search = text
	l.pending = nil
	l.refilter()
}

// Find looks id up in the loaded products.
func (l *Listing) Find(id int) (catalog.Product, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.all {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (l *Listing) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := View{
		Status:     l.status(),
		Categories: append([]string{}, l.categories...),
		Category:   l.category,
		Search:     l.search,
		Count:      len(l.visible),
		Products:   append([]catalog.Product{}, l.visible...),
	}
	if l.err != nil {
		v.Error = "the catalog could not be loaded"
	}
	if l.pending != nil {
		p := *l.pending
		v.PendingSearch = &p
	}
	return v
}

// Close disposes the listing. Pending searches and loads in flight are
// dropped.
func (l *Listing) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.pending = nil
	l.debounce.Stop()
}

// refilter must be called with mu held.
func (l *Listing) refilter() {
	l.visible = catalog.Filter(l.all, l.category, l.search)
}

// status must be called with mu held.
func (l *Listing) status() Status {
	switch {
	case l.inFlight:
		return Loading
	case !l.loaded:
		return Idle
	case l.err != nil:
		return Failed
	case len(l.visible) == 0:
		return Empty
	default:
		return Ready
	}
}
