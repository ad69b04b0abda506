package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httpclient"
)

var catalogRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total number of catalog API requests by endpoint and outcome",
	},
	[]string{"endpoint", "outcome"},
)

// maxBodySize caps response bodies read from the catalog API.
const maxBodySize = 8 << 20

// Client issues read-only requests against the remote catalog API. It
// performs no caching and no retries; every call is a single
// request-response cycle.
type Client struct {
	base   *url.URL
	doer   httpclient.Doer
	logger *slog.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	return &Client{
		base:   base,
		doer:   doer,
		logger: logger,
	}, nil
}

// Products fetches one page of the generic product listing. Sort parameters
// are applied server-side when sort is non-nil.
func (c *Client) Products(ctx context.Context, limit, skip int, sort *domain.SortOption) (domain.PagedProducts, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	addSort(q, sort)

	var page domain.PagedProducts
	if err := c.get(ctx, "products", "/products", q, &page); err != nil {
		return domain.PagedProducts{}, err
	}
	return page, nil
}

// ProductsByCategory fetches the complete, unpaginated listing for a
// category slug. The endpoint ignores sort parameters, so none are sent.
func (c *Client) ProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	var page domain.PagedProducts
	if err := c.get(ctx, "category", "/products/category/"+url.PathEscape(slug), nil, &page); err != nil {
		return nil, err
	}
	return page.Products, nil
}

// Search fetches products matching the free-text query. The search endpoint
// accepts sort parameters but no category parameter.
func (c *Client) Search(ctx context.Context, query string, sort *domain.SortOption) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("q", query)
	addSort(q, sort)

	var page domain.PagedProducts
	if err := c.get(ctx, "search", "/products/search", q, &page); err != nil {
		return nil, err
	}
	return page.Products, nil
}

// Categories fetches the flat list of category slugs.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := c.get(ctx, "categories", "/products/category-list", nil, &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// CategoryDetails fetches full category objects (slug, name, url).
func (c *Client) CategoryDetails(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.get(ctx, "categories", "/products/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ProductByID fetches a single product detail, including reviews.
func (c *Client) ProductByID(ctx context.Context, id int) (domain.ProductDetail, error) {
	var detail domain.ProductDetail
	if err := c.get(ctx, "detail", "/products/"+strconv.Itoa(id), nil, &detail); err != nil {
		return domain.ProductDetail{}, err
	}
	return detail, nil
}

// get executes a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	err := c.doGet(ctx, path, query, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	catalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		// The breaker wrapper consumes 5xx responses; recover the status.
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return &ServerError{StatusCode: statusErr.StatusCode}
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(body) == 0 {
		return ErrNoData
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.DebugContext(ctx, "catalog response decode failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return nil
}

func addSort(q url.Values, sort *domain.SortOption) {
	if sort == nil {
		return
	}
	q.Set("sortBy", sort.Field())
	q.Set("order", sort.Order())
}
