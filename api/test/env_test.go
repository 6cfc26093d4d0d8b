package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// panicID is the product id the test catalog panics on.
const panicID = 13

const debounceWait = 20 * time.Millisecond

func products() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing"},
		{ID: 2, Title: "Slim Fit T-Shirt", Price: decimal.RequireFromString("22.3"), Category: "men's clothing"},
		{ID: 3, Title: "Gold Ring", Price: decimal.NewFromInt(20), Category: "jewelery"},
		{ID: 4, Title: "Portable Hard Drive", Price: decimal.NewFromInt(64), Category: "electronics"},
	}
}

type mockCatalog struct {
	mu       sync.Mutex
	products []catalog.Product
	status   int
}

func (m *mockCatalog) set(ps []catalog.Product, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = ps
	m.status = status
}

func (m *mockCatalog) state() ([]catalog.Product, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products, m.status
}

func (m *mockCatalog) handle() http.Handler {
	list := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps, st := m.state()
		if st != 0 {
			web.Respond(context.Background(), w, nil, st)
			return
		}
		web.Respond(context.Background(), w, ps, http.StatusOK)
	})

	categories := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps, st := m.state()
		if st != 0 {
			web.Respond(context.Background(), w, nil, st)
			return
		}

		seen := map[string]bool{}
		cs := []string{}
		for _, p := range ps {
			if !seen[p.Category] {
				seen[p.Category] = true
				cs = append(cs, p.Category)
			}
		}
		web.Respond(context.Background(), w, cs, http.StatusOK)
	})

	detail := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps, st := m.state()
		if st != 0 {
			web.Respond(context.Background(), w, nil, st)
			return
		}

		id := mux.Vars(r)["id"]
		for _, p := range ps {
			if strconv.Itoa(p.ID) == id {
				web.Respond(context.Background(), w, p, http.StatusOK)
				return
			}
		}
		if id == "404" {
			web.Respond(context.Background(), w, nil, http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	byCategory := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps, st := m.state()
		if st != 0 {
			web.Respond(context.Background(), w, nil, st)
			return
		}
		web.Respond(context.Background(), w, catalog.Filter(ps, mux.Vars(r)["category"], ""), http.StatusOK)
	})

	r := mux.NewRouter()
	r.Handle("/products", list).Methods("GET")
	r.Handle("/products/category/{category}", byCategory).Methods("GET")
	r.Handle("/products/categories", categories).Methods("GET")
	r.Handle("/products/{id:[0-9]+}", detail).Methods("GET")
	return r
}

// panicky is a catalog whose detail lookup blows up for panicID.
type panicky struct {
	*catalog.Client
}

func (p panicky) Product(ctx context.Context, id int) (catalog.Product, error) {
	if id == panicID {
		panic(fmt.Sprintf("product %d is cursed", id))
	}
	return p.Client.Product(ctx, id)
}

type TestEnv struct {
	*httptest.Server
	Catalog  *mockCatalog
	Shoppers *shopper.Registry
	Logs     *logtest.Hook
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	entry := log.WithField("test", name)

	m := &mockCatalog{products: products()}
	upstream := httptest.NewServer(m.handle())
	t.Cleanup(upstream.Close)

	cat, err := catalog.NewClient(upstream.URL, time.Second, entry)
	if err != nil {
		return nil, fmt.Errorf("creating catalog client: %w", err)
	}

	sm := scs.New()
	sm.Lifetime = time.Hour

	reg := shopper.NewRegistry(shopper.Config{
		Catalog:  cat,
		Debounce: debounceWait,
		Expiry:   time.Hour,
		Log:      entry,
	})
	t.Cleanup(reg.Close)

	lim := rate.NewLimiter(1000, time.Minute, 1000)
	t.Cleanup(lim.Close)

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		Log:      entry,
		Session:  sm,
		Shoppers: reg,
		Catalog:  panicky{cat},
		Limiter:  lim,
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	srv.Client().Jar = jar

	return &TestEnv{
		Server:   srv,
		Catalog:  m,
		Shoppers: reg,
		Logs:     hook,
	}, nil
}

// do sends a JSON request and decodes the reply into out, failing the test
// when the status is not want.
func (env *TestEnv) do(t *testing.T, method, path string, in, out any, want int) {
	t.Helper()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != want {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("%s %s: expected status %d, but got %s: %s", method, path, want, w.Status, b)
	}

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: cannot unmarshal response: %v", method, path, err)
		}
	}
}
