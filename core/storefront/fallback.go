package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
)

// HandleNotFound is the fallback view for unmatched paths.
func HandleNotFound() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return weberr.NotFound(fmt.Errorf("no view for %s %s", r.Method, r.URL.Path))
	}
}
