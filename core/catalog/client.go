package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds the size of a catalog response.
const maxBodyBytes = 8 << 20

// Client reads the remote product catalog.
type Client struct {
	base *url.URL
	http *http.Client
	log  logrus.FieldLogger
}

// NewClient builds a catalog client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalog base url is empty")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog base url %q is not absolute", baseURL)
	}

	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var ps []Product
	if _, err := c.get(ctx, "/products", &ps, false); err != nil {
		return nil, err
	}

	return ps, nil
}

// Product fetches a single product. The catalog answers unknown ids with
// either 404 or an empty body; both yield ErrProductNotFound.
func (c *Client) Product(ctx context.Context, id int) (Product, error) {
	var p *Product
	found, err := c.get(ctx, "/products/"+strconv.Itoa(id), &p, true)
	if err != nil {
		return Product{}, err
	}

	if !found || p == nil {
		return Product{}, fmt.Errorf("product[%d]: %w", id, ErrProductNotFound)
	}
	return *p, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var cs []string
	if _, err := c.get(ctx, "/products/categories", &cs, false); err != nil {
		return nil, err
	}

	return cs, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	var ps []Product
	if _, err := c.get(ctx, "/products/category/"+url.PathEscape(category), &ps, false); err != nil {
		return nil, err
	}

	return ps, nil
}

// get decodes the JSON body of GET path into val. With missingOK, a 404 or
// an empty or null body reports false with no error; otherwise both are
// failures.
func (c *Client) get(ctx context.Context, path string, val any, missingOK bool) (bool, error) {
	u := c.base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("%w: building request for %s: %w", ErrFetchFailed, path, err)
	}
	req.Header.Set("Accept", "application/json")

	log := c.log.WithFields(logrus.Fields{
		"method": http.MethodGet,
		"url":    u.String(),
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("catalog request failed")
		return false, fmt.Errorf("%w: GET %s: %w", ErrFetchFailed, path, err)
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"statuscode": resp.StatusCode,
		"since":      time.Since(start).Nanoseconds(),
	}).Debug("catalog request completed")

	if missingOK && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: GET %s: status %s", ErrFetchFailed, path, resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, fmt.Errorf("%w: reading body of %s: %w", ErrFetchFailed, path, err)
	}

	if b = bytes.TrimSpace(b); len(b) == 0 || bytes.Equal(b, []byte("null")) {
		if missingOK {
			return false, nil
		}
		return false, fmt.Errorf("%w: GET %s: empty body", ErrFetchFailed, path)
	}

	if err := json.Unmarshal(b, val); err != nil {
		return false, fmt.Errorf("%w: decoding body of %s: %w", ErrFetchFailed, path, err)
	}

	return true, nil
}
