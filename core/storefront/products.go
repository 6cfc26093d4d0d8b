package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/sirupsen/logrus"
)

type CategoryUp struct {
	Category string `json:"category"`
}

type SearchUp struct {
	Query string `json:"query" validate:"max=200"`
}

// load fills the listing of s the first time it is viewed, or always when
// force is set. A catalog failure is part of the view, not a request
// error, so it is only logged.
func load(ctx context.Context, log logrus.FieldLogger, s *shopper.Shopper, force bool) {
	if !force && s.Listing.Loaded() {
		return
	}

	// The load outlives a client that goes away; a listing disposed in the
	// meantime drops the result.
	if err := s.Listing.Load(context.WithoutCancel(ctx)); err != nil {
		log.WithFields(logrus.Fields{
			"shopper": s.ID,
			"message": err,
		}).Warn("catalog unavailable")
	}
}

func productsView(s *shopper.Shopper) ProductsView {
	return ProductsView{
		View:      s.Listing.View(),
		CartCount: s.Badge(),
	}
}

func HandleListProducts(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		load(ctx, log, s, false)

		return web.Respond(ctx, w, productsView(s), http.StatusOK)
	}
}

func HandleRefreshProducts(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		load(ctx, log, s, true)

		return web.Respond(ctx, w, productsView(s), http.StatusOK)
	}
}

func HandleSelectCategory(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		var up CategoryUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		load(ctx, log, s, false)
		s.Listing.SelectCategory(up.Category)

		return web.Respond(ctx, w, productsView(s), http.StatusOK)
	}
}

// HandleSearch records the search text. It is applied to the listing once
// the shopper stops typing, so the returned view shows it as pending.
func HandleSearch(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		var up SearchUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := check(up); err != nil {
			return err
		}

		load(ctx, log, s, false)
		s.Listing.Search(up.Query)

		return web.Respond(ctx, w, productsView(s), http.StatusAccepted)
	}
}

func HandleShowProduct(cat Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		id, err := web.ParamInt(r, "id")
		if err != nil {
			return weberr.NotFound(err)
		}

		p, err := cat.Product(ctx, id)
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			return weberr.NotFound(err, weberr.WithFields(map[string]interface{}{"product_id": id}))
		case err != nil:
			return weberr.BadGateway(fmt.Errorf("fetching product[%d]: %w", id, err))
		}

		snap := s.Cart.Snapshot()
		var inCart int
		if li, ok := snap.Find(id); ok {
			inCart = li.Quantity
		}

		v := ProductView{
			Product:   p,
			InCart:    inCart,
			CartCount: snap.Count(),
			Back:      weberr.Home,
		}
		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleListCategories(cat Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		cs, err := cat.Categories(ctx)
		if err != nil {
			return weberr.BadGateway(fmt.Errorf("fetching categories: %w", err))
		}

		v := CategoriesView{
			Categories: cs,
			CartCount:  s.Badge(),
		}
		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleShowCategory(cat Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		c := web.Param(r, "category")

		ps, err := cat.ProductsByCategory(ctx, c)
		if err != nil {
			return weberr.BadGateway(
				fmt.Errorf("fetching category[%s]: %w", c, err),
				weberr.WithFields(map[string]interface{}{"category": c}),
			)
		}

		v := CategoryView{
			Category:  c,
			Count:     len(ps),
			Products:  ps,
			CartCount: s.Badge(),
			Back:      weberr.Home,
		}
		return web.Respond(ctx, w, v, http.StatusOK)
	}
}
