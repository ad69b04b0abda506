// Package browse implements the list-state coordination behind the product
// browsing screen: free-text search, category filtering, sorting, and
// infinite-scroll pagination reconciled into a single consistent product
// list with granular loading and error signals.
package browse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/relay"
)

// Loading identifies which kind of fetch, if any, is in progress. The states
// are mutually exclusive so the UI can drive distinct indicators.
type Loading string

const (
	LoadingNone       Loading = "none"
	LoadingInitial    Loading = "initial"
	LoadingSearch     Loading = "search"
	LoadingPagination Loading = "pagination"
	LoadingRefresh    Loading = "refresh"
)

// Fetcher is the read surface of the remote catalog the coordinator
// depends on.
type Fetcher interface {
	Products(ctx context.Context, limit, skip int, sort *domain.SortOption) (domain.PagedProducts, error)
	ProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error)
	Search(ctx context.Context, query string, sort *domain.SortOption) ([]domain.Product, error)
}

// Config holds coordinator tuning.
type Config struct {
	// PageSize is the fixed page size for paginated fetches.
	PageSize int
	// SearchDebounce is the delay applied to search text changes.
	SearchDebounce time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:       20,
		SearchDebounce: 300 * time.Millisecond,
	}
}

// Snapshot is a point-in-time view of the coordinator state for pull-based
// consumers.
type Snapshot struct {
	Products    []domain.Product     `json:"products"`
	Loading     Loading              `json:"loading"`
	CanLoadMore bool                 `json:"can_load_more"`
	IsEmpty     bool                 `json:"is_empty"`
	SearchText  string               `json:"search_text"`
	Filter      domain.FilterOptions `json:"filter"`
	Sort        *domain.SortOption   `json:"sort,omitempty"`
}

// Coordinator serializes search, filter, sort, and pagination events into a
// deterministic sequence of catalog fetches. At most one fetch is in flight
// at a time; state-resetting events supersede the in-flight fetch by bumping
// a generation counter, so a late response for stale parameters is discarded
// on arrival rather than cancelled at the transport level.
type Coordinator struct {
	fetcher Fetcher
	logger  *slog.Logger
	cfg     Config

	mu            sync.Mutex
	searchText    string
	pendingSearch string
	debounce      *time.Timer
	filter        domain.FilterOptions
	sort          *domain.SortOption
	page          int
	canLoadMore   bool
	inFlight      bool
	generation    uint64
	products      []domain.Product
	loading       Loading
	lastError     error

	productsRelay *relay.Relay[[]domain.Product]
	loadingRelay  *relay.Relay[Loading]
	emptyRelay    *relay.Relay[bool]
	errs          *relay.Events[error]
}

// NewCoordinator creates a coordinator. It performs no fetch until
// LoadInitial or one of the input operations is invoked.
func NewCoordinator(fetcher Fetcher, cfg Config, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:       fetcher,
		logger:        logger,
		cfg:           cfg,
		canLoadMore:   true,
		loading:       LoadingNone,
		productsRelay: relay.New([]domain.Product(nil)),
		loadingRelay:  relay.New(LoadingNone),
		emptyRelay:    relay.New(true),
		errs:          relay.NewEvents[error](),
	}
}

// ProductUpdates exposes the product list stream.
func (c *Coordinator) ProductUpdates() *relay.Relay[[]domain.Product] {
	return c.productsRelay
}

// LoadingUpdates exposes the loading state stream.
func (c *Coordinator) LoadingUpdates() *relay.Relay[Loading] {
	return c.loadingRelay
}

// EmptyUpdates exposes the is-empty stream.
func (c *Coordinator) EmptyUpdates() *relay.Relay[bool] {
	return c.emptyRelay
}

// Errors exposes the one-shot error event stream.
func (c *Coordinator) Errors() *relay.Events[error] {
	return c.errs
}

// Snapshot returns the current coordinator state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Products:    copyProducts(c.products),
		Loading:     c.loading,
		CanLoadMore: c.canLoadMore,
		IsEmpty:     len(c.products) == 0,
		SearchText:  c.searchText,
		Filter:      c.filter,
		Sort:        c.sort,
	}
}

// ConsumeError returns the last fetch error and clears it, or nil.
func (c *Coordinator) ConsumeError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.lastError
	c.lastError = nil
	return err
}

// LoadInitial issues the first fetch using the current filter and sort.
func (c *Coordinator) LoadInitial() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAndLoadLocked(LoadingInitial)
}

// SetSearchText records a search text change. The change is debounced and
// deduplicated: the fetch fires only after the debounce delay with no
// further keystrokes, and only if the settled text differs from the text
// already applied. Empty settled text reloads the unfiltered paginated list.
func (c *Coordinator) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingSearch = text
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.cfg.SearchDebounce, c.applyPendingSearch)
}

func (c *Coordinator) applyPendingSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := c.pendingSearch
	if text == c.searchText {
		return
	}
	c.searchText = text

	if text == "" {
		c.resetAndLoadLocked(LoadingInitial)
		return
	}
	c.resetAndLoadLocked(LoadingSearch)
}

// ClearSearch immediately clears the search text, cancelling any pending
// debounce, and reloads the unfiltered list. This is the explicit
// transition a renderer invokes when the search field is dismissed.
func (c *Coordinator) ClearSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.pendingSearch = ""
	if c.searchText == "" {
		return
	}
	c.searchText = ""
	c.resetAndLoadLocked(LoadingInitial)
}

// SetFilter replaces the filter wholesale. An unchanged filter (compared by
// value) is a no-op; otherwise the list is reset and reloaded. A category
// filter routes fetches to the non-paginated category endpoint.
func (c *Coordinator) SetFilter(f domain.FilterOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Equal(c.filter) {
		return
	}
	c.filter = f
	c.resetAndLoadLocked(LoadingInitial)
}

// SetSort replaces the sort option. An unchanged sort is a no-op; otherwise
// the list is reset and reloaded.
func (c *Coordinator) SetSort(sort *domain.SortOption) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eqSort(sort, c.sort) {
		return
	}
	c.sort = sort
	c.resetAndLoadLocked(LoadingInitial)
}

// Refresh re-runs the current fetch under the refresh loading flag so a
// pull-to-refresh indicator can be driven independently.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAndLoadLocked(LoadingRefresh)
}

// LoadNextPage appends the next page to the product list. The call is
// dropped, not queued, when no more pages exist, a fetch is already in
// flight, a category filter is active, or a search is active.
func (c *Coordinator) LoadNextPage() {
	c.mu.Lock()
	if !c.canLoadMore || c.inFlight || c.filter.HasCategory() || c.searchText != "" {
		c.mu.Unlock()
		return
	}

	gen := c.generation
	next := c.page + 1
	c.inFlight = true
	c.setLoadingLocked(LoadingPagination)
	sort := c.sort
	filter := c.filter
	c.mu.Unlock()

	go func() {
		page, err := c.fetcher.Products(context.Background(), c.cfg.PageSize, next*c.cfg.PageSize, sort)

		c.mu.Lock()
		defer c.mu.Unlock()

		if gen != c.generation {
			c.logger.Debug("discarding stale pagination result")
			return
		}
		c.inFlight = false
		c.setLoadingLocked(LoadingNone)

		if err != nil {
			// The page index was never advanced, so a retry resumes from
			// the correct offset and the loaded list is untouched.
			c.failLocked(err)
			return
		}

		c.page = next
		c.canLoadMore = len(page.Products) == c.cfg.PageSize
		c.products = appendUnique(c.products, filter.Refine(page.Products))
		c.publishProductsLocked()
	}()
}

// Close stops the debounce timer. In-flight fetches are left to complete
// and discard themselves.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.generation++
}

// resetAndLoadLocked resets the cursor to page zero and issues one fetch
// for the current search text, filter, and sort. The generation bump
// invalidates any in-flight fetch.
func (c *Coordinator) resetAndLoadLocked(loading Loading) {
	c.generation++
	gen := c.generation
	c.page = 0
	c.canLoadMore = c.searchText == "" && !c.filter.HasCategory()
	c.inFlight = true

	// A search over an already-populated list runs in the background so the
	// visible rows are not hidden behind a spinner.
	if loading == LoadingSearch && len(c.products) > 0 {
		loading = LoadingNone
	}
	c.setLoadingLocked(loading)

	query := c.searchText
	filter := c.filter
	sort := c.sort

	go c.fetchAndApply(gen, query, filter, sort)
}

// fetchAndApply runs one fetch off the lock and merges the result if its
// generation is still current.
func (c *Coordinator) fetchAndApply(gen uint64, query string, filter domain.FilterOptions, sort *domain.SortOption) {
	ctx := context.Background()

	var (
		items     []domain.Product
		rawCount  int
		paginated bool
		err       error
	)

	switch {
	case query != "":
		// The search endpoint takes no category parameter, so the category
		// filter is applied client-side to the results.
		items, err = c.fetcher.Search(ctx, query, sort)
		if err == nil && filter.HasCategory() {
			items = filterByCategory(items, *filter.Category)
		}
	case filter.HasCategory():
		// Category fetches return the full set in one response. The
		// endpoint ignores sort parameters, so sorting happens here; the
		// comparator is stable and keeps response order on ties.
		items, err = c.fetcher.ProductsByCategory(ctx, *filter.Category)
		if err == nil && sort != nil {
			sort.Sort(items)
		}
	default:
		var page domain.PagedProducts
		page, err = c.fetcher.Products(ctx, c.cfg.PageSize, 0, sort)
		items = page.Products
		rawCount = len(page.Products)
		paginated = true
	}

	if err == nil {
		items = dedupeByID(filter.Refine(items))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale fetch result",
			slog.String("query", query),
		)
		return
	}
	c.inFlight = false
	c.setLoadingLocked(LoadingNone)

	if err != nil {
		c.failLocked(err)
		return
	}

	c.products = items
	if paginated {
		// More pages exist only while full pages keep coming back.
		c.canLoadMore = rawCount == c.cfg.PageSize
	} else {
		c.canLoadMore = false
	}
	c.publishProductsLocked()
}

// failLocked records a fetch failure: the error is surfaced once, the
// coordinator returns to a non-loading state, and the loaded products are
// left as they were.
func (c *Coordinator) failLocked(err error) {
	c.logger.Warn("catalog fetch failed", slog.String("error", err.Error()))
	c.lastError = err
	c.errs.Publish(err)
}

func (c *Coordinator) setLoadingLocked(l Loading) {
	if c.loading == l {
		return
	}
	c.loading = l
	c.loadingRelay.Publish(l)
}

func (c *Coordinator) publishProductsLocked() {
	snapshot := copyProducts(c.products)
	c.productsRelay.Publish(snapshot)
	c.emptyRelay.Publish(len(snapshot) == 0)
}

func copyProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}

func filterByCategory(products []domain.Product, slug string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == slug {
			out = append(out, p)
		}
	}
	return out
}

// dedupeByID drops later duplicates, keeping first-seen order.
func dedupeByID(products []domain.Product) []domain.Product {
	seen := make(map[int]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// appendUnique appends fresh items whose ids are not already present.
func appendUnique(existing, fresh []domain.Product) []domain.Product {
	seen := make(map[int]struct{}, len(existing))
	for _, p := range existing {
		seen[p.ID] = struct{}{}
	}
	out := existing
	for _, p := range fresh {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func eqSort(a, b *domain.SortOption) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
