package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/core/checkout"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/irsalhamdi/storefront/validate"
)

func check(val any) error {
	if err := validate.Check(val); err != nil {
		return weberr.NewError(err, err.Error(), http.StatusBadRequest)
	}
	return nil
}

func HandleShowCart() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cartView(s.Cart.Snapshot()), http.StatusOK)
	}
}

func HandleClearCart() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		s.Cart.Clear()

		return web.Respond(ctx, w, cartView(s.Cart.Snapshot()), http.StatusOK)
	}
}

// HandleAddItem copies the product into the cart. Products already loaded
// in the shopper's listing are taken from there; others are fetched.
func HandleAddItem(cat Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		var in cart.AddItem
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := check(in); err != nil {
			return err
		}

		p, ok := s.Listing.Find(in.ProductID)
		if !ok {
			p, err = cat.Product(ctx, in.ProductID)
			switch {
			case errors.Is(err, catalog.ErrProductNotFound):
				return weberr.NotFound(err, weberr.WithFields(map[string]interface{}{"product_id": in.ProductID}))
			case err != nil:
				return weberr.BadGateway(fmt.Errorf("fetching product[%d]: %w", in.ProductID, err))
			}
		}

		s.Cart.Add(cart.ItemFrom(p), in.Quantity)

		return web.Respond(ctx, w, cartView(s.Cart.Snapshot()), http.StatusOK)
	}
}

func HandleUpdateItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		id, err := web.ParamInt(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var up cart.QuantityUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := check(up); err != nil {
			return err
		}

		s.Cart.UpdateQuantity(id, *up.Quantity)

		return web.Respond(ctx, w, cartView(s.Cart.Snapshot()), http.StatusOK)
	}
}

func HandleDeleteItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		id, err := web.ParamInt(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		s.Cart.Remove(id)

		return web.Respond(ctx, w, cartView(s.Cart.Snapshot()), http.StatusOK)
	}
}

func HandleCheckout() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s, err := shopper.Get(ctx)
		if err != nil {
			return err
		}

		sum, err := checkout.Summarize(s.Cart.Snapshot(), time.Now())
		if errors.Is(err, checkout.ErrEmptyCart) {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}
		if err != nil {
			return weberr.InternalError(fmt.Errorf("summarizing checkout: %w", err))
		}

		return web.Respond(ctx, w, sum, http.StatusOK)
	}
}
