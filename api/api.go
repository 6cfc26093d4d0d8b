package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api/middleware"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/irsalhamdi/storefront/core/storefront"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Shoppers   *shopper.Registry
	Catalog    storefront.Catalog
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	a.mw = append(a.mw, middleware.Shopper(cfg.Session, cfg.Shoppers))

	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodGet, "/", storefront.HandleListProducts(cfg.Log))
	a.Handle(http.MethodGet, "/products", storefront.HandleListProducts(cfg.Log))
	a.Handle(http.MethodPost, "/products/refresh", storefront.HandleRefreshProducts(cfg.Log), limited)
	a.Handle(http.MethodPut, "/products/filter", storefront.HandleSelectCategory(cfg.Log), limited)
	a.Handle(http.MethodPut, "/products/search", storefront.HandleSearch(cfg.Log), limited)
	a.Handle(http.MethodGet, "/products/{id}", storefront.HandleShowProduct(cfg.Catalog))
	a.Handle(http.MethodGet, "/categories", storefront.HandleListCategories(cfg.Catalog))
	a.Handle(http.MethodGet, "/categories/{category}", storefront.HandleShowCategory(cfg.Catalog))

	a.Handle(http.MethodGet, "/cart", storefront.HandleShowCart())
	a.Handle(http.MethodDelete, "/cart", storefront.HandleClearCart(), limited)
	a.Handle(http.MethodPost, "/cart/items", storefront.HandleAddItem(cfg.Catalog), limited)
	a.Handle(http.MethodPut, "/cart/items/{id}", storefront.HandleUpdateItem(), limited)
	a.Handle(http.MethodDelete, "/cart/items/{id}", storefront.HandleDeleteItem(), limited)

	a.Handle(http.MethodGet, "/checkout", storefront.HandleCheckout())

	a.Router.NotFoundHandler = a.handler(storefront.HandleNotFound())
	a.Router.MethodNotAllowedHandler = a.handler(storefront.HandleNotFound())

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	a.Router.Handle(path, a.handler(handler, mw...)).Methods(method)
}

func (a *api) handler(handler web.Handler, mw ...web.Middleware) http.Handler {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})
}
