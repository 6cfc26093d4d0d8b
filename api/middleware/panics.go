package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
)

// Panics turns a panic in the handler into an error, so the request gets
// the fallback view and the server keeps running.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = weberr.Wrap(
						fmt.Errorf("panic: %v", rec),
						weberr.WithFields(map[string]interface{}{"trace": string(debug.Stack())}),
					)
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
