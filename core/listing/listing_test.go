package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/shopspring/decimal"
)

type fakeCatalog struct {
	products   []catalog.Product
	categories []string
	err        error
	categErr   error
	release    chan struct{}
}

func (f *fakeCatalog) Products(ctx context.Context) ([]catalog.Product, error) {
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]string, error) {
	if f.categErr != nil {
		return nil, f.categErr
	}
	return f.categories, nil
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Smartphone X", Category: "electronics", Price: decimal.NewFromInt(300)},
		{ID: 2, Title: "Cotton Shirt", Category: "men's clothing", Price: decimal.NewFromInt(20)},
		{ID: 3, Title: "Phone Case", Category: "accessories", Price: decimal.NewFromInt(5)},
		{ID: 4, Title: "Laptop Pro", Category: "electronics", Price: decimal.NewFromInt(1200)},
	}
}

func visibleIDs(v View) []int {
	res := []int{}
	for _, p := range v.Products {
		res = append(res, p.ID)
	}
	return res
}

const wait = 20 * time.Millisecond

func loaded(t *testing.T, f *fakeCatalog) *Listing {
	t.Helper()

	l := New(f, wait)
	t.Cleanup(l.Close)

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("loading listing: %v", err)
	}
	return l
}

func TestLoad(t *testing.T) {
	cats := []string{"accessories", "electronics", "men's clothing"}
	l := New(&fakeCatalog{products: testProducts(), categories: cats}, wait)
	defer l.Close()

	if l.Loaded() {
		t.Fatal("expected a new listing not to be loaded")
	}
	if st := l.View().Status; st != Idle {
		t.Fatalf("expected status %q, but got %q", Idle, st)
	}

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("loading listing: %v", err)
	}

	v := l.View()
	if v.Status != Ready {
		t.Fatalf("expected status %q, but got %q", Ready, v.Status)
	}
	if v.Category != catalog.AllCategories {
		t.Fatalf("expected default category %q, but got %q", catalog.AllCategories, v.Category)
	}
	if diff := cmp.Diff(cats, v.Categories); diff != "" {
		t.Fatalf("wrong categories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, visibleIDs(v)); diff != "" {
		t.Fatalf("wrong products (-want +got):\n%s", diff)
	}
}

func TestLoadingStatus(t *testing.T) {
	f := &fakeCatalog{products: testProducts(), release: make(chan struct{})}
	l := New(f, wait)
	defer l.Close()

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for l.View().Status != Loading {
		if time.Now().After(deadline) {
			t.Fatal("listing never entered the loading state")
		}
		time.Sleep(time.Millisecond)
	}
	if !l.Loaded() {
		t.Fatal("expected a listing with a load in flight to count as loaded")
	}

	close(f.release)
	if err := <-done; err != nil {
		t.Fatalf("loading listing: %v", err)
	}
	if st := l.View().Status; st != Ready {
		t.Fatalf("expected status %q, but got %q", Ready, st)
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: []catalog.Product{}})

	v := l.View()
	if v.Status != Empty {
		t.Fatalf("expected status %q, but got %q", Empty, v.Status)
	}
	if v.Error != "" {
		t.Fatalf("expected no error for an empty catalog, but got %q", v.Error)
	}
	if v.Products == nil || len(v.Products) != 0 {
		t.Fatalf("expected an empty product list, but got %#v", v.Products)
	}
}

func TestLoadFailure(t *testing.T) {
	tests := map[string]*fakeCatalog{
		"products":   {err: catalog.ErrFetchFailed},
		"categories": {products: testProducts(), categErr: catalog.ErrFetchFailed},
	}

	for name, f := range tests {
		t.Run(name, func(t *testing.T) {
			l := New(f, wait)
			defer l.Close()

			err := l.Load(context.Background())
			if !errors.Is(err, catalog.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, but got %v", err)
			}

			v := l.View()
			if v.Status != Failed {
				t.Fatalf("expected status %q, but got %q", Failed, v.Status)
			}
			if v.Error == "" {
				t.Fatal("expected an error message in the view")
			}
			if len(v.Products) != 0 {
				t.Fatalf("expected no products after a failure, but got %d", len(v.Products))
			}

			// Filters keep working on the failed listing.
			l.SelectCategory("electronics")
			if st := l.View().Status; st != Failed {
				t.Fatalf("expected status %q to persist, but got %q", Failed, st)
			}
		})
	}
}

func TestReloadRecovers(t *testing.T) {
	f := &fakeCatalog{err: catalog.ErrFetchFailed}
	l := New(f, wait)
	defer l.Close()

	_ = l.Load(context.Background())

	f.err = nil
	f.products = testProducts()
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("reloading listing: %v", err)
	}

	v := l.View()
	if v.Status != Ready || v.Error != "" {
		t.Fatalf("expected a ready listing after reload, but got status %q error %q", v.Status, v.Error)
	}
}

func TestSelectCategoryImmediate(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	l.SelectCategory("electronics")
	if diff := cmp.Diff([]int{1, 4}, visibleIDs(l.View())); diff != "" {
		t.Fatalf("wrong products (-want +got):\n%s", diff)
	}

	l.SelectCategory("furniture")
	if v := l.View(); v.Status != Empty || v.Count != 0 {
		t.Fatalf("expected an empty view, but got status %q count %d", v.Status, v.Count)
	}

	l.SelectCategory("")
	if v := l.View(); v.Category != catalog.AllCategories || v.Count != 4 {
		t.Fatalf("expected every product for an empty category, but got %q with %d", v.Category, v.Count)
	}
}

func TestSearchDebounced(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	for _, s := range []string{"p", "ph", "pho", "PHONE"} {
		l.Search(s)
	}

	v := l.View()
	if v.Count != 4 {
		t.Fatalf("expected search not to apply before the window, but got %d products", v.Count)
	}
	if v.PendingSearch == nil || *v.PendingSearch != "PHONE" {
		t.Fatalf("expected pending search %q, but got %v", "PHONE", v.PendingSearch)
	}

	time.Sleep(5 * wait)

	v = l.View()
	if v.PendingSearch != nil {
		t.Fatalf("expected no pending search, but got %q", *v.PendingSearch)
	}
	if v.Search != "PHONE" {
		t.Fatalf("expected applied search %q, but got %q", "PHONE", v.Search)
	}
	if diff := cmp.Diff([]int{1, 3}, visibleIDs(v)); diff != "" {
		t.Fatalf("wrong products (-want +got):\n%s", diff)
	}
}

func TestStaleSearchKeepsPending(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	l.Search("phone")
	l.Search("laptop")

	// A timer for the first search that fired before it could be stopped.
	l.applySearch("phone", 1)

	v := l.View()
	if v.Search != "" || v.Count != 4 {
		t.Fatalf("expected the superseded search to be ignored, but got search %q count %d", v.Search, v.Count)
	}
	if v.PendingSearch == nil || *v.PendingSearch != "laptop" {
		t.Fatalf("expected pending search %q, but got %v", "laptop", v.PendingSearch)
	}

	time.Sleep(5 * wait)

	v = l.View()
	if v.PendingSearch != nil || v.Search != "laptop" {
		t.Fatalf("expected search %q to be applied, but got search %q pending %v", "laptop", v.Search, v.PendingSearch)
	}
	if diff := cmp.Diff([]int{4}, visibleIDs(v)); diff != "" {
		t.Fatalf("wrong products (-want +got):\n%s", diff)
	}
}

func TestSearchAndCategoryCompose(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	l.Search("phone")
	time.Sleep(5 * wait)
	l.SelectCategory("electronics")

	if diff := cmp.Diff([]int{1}, visibleIDs(l.View())); diff != "" {
		t.Fatalf("wrong products (-want +got):\n%s", diff)
	}
}

func TestCloseDropsPendingSearch(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	l.Search("laptop")
	l.Close()
	time.Sleep(5 * wait)

	v := l.View()
	if v.Search != "" || v.Count != 4 {
		t.Fatalf("expected closed listing to ignore the pending search, but got search %q count %d", v.Search, v.Count)
	}
}

func TestCloseDiscardsLateLoad(t *testing.T) {
	f := &fakeCatalog{products: testProducts(), release: make(chan struct{})}
	l := New(f, wait)

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for l.View().Status != Loading {
		if time.Now().After(deadline) {
			t.Fatal("listing never entered the loading state")
		}
		time.Sleep(time.Millisecond)
	}

	l.Close()
	close(f.release)

	if err := <-done; err != nil {
		t.Fatalf("expected a discarded load to return nil, but got %v", err)
	}
	if v := l.View(); v.Count != 0 {
		t.Fatalf("expected closed listing to discard the result, but got %d products", v.Count)
	}
}

func TestFind(t *testing.T) {
	l := loaded(t, &fakeCatalog{products: testProducts()})

	p, ok := l.Find(4)
	if !ok || p.Title != "Laptop Pro" {
		t.Fatalf("expected to find Laptop Pro, but got %v %q", ok, p.Title)
	}

	if _, ok := l.Find(99); ok {
		t.Fatal("expected unknown id not to be found")
	}
}
