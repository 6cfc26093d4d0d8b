package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/irsalhamdi/storefront/validate"
)

const shopperSessionKey = "shopper_id"

// LoadAndSave loads the session of the request and saves it once the
// handler is done.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})
			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))

			return err
		}
		return h
	}
	return m
}

// Shopper attaches the shopper of the current session to the context,
// starting a new one when the session has none.
func Shopper(sm *scs.SessionManager, reg *shopper.Registry) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := sm.GetString(ctx, shopperSessionKey)
			if validate.CheckID(id) != nil {
				id = validate.GenerateID()
				sm.Put(ctx, shopperSessionKey, id)
			}

			ctx = shopper.Set(ctx, reg.Get(id))
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
