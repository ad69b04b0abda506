package browse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
)

// fakeFetcher serves canned pages and records every call. An optional gate
// channel blocks fetches until released, for staleness scenarios.
type fakeFetcher struct {
	mu sync.Mutex

	pages      map[int][]domain.Product // keyed by skip
	byCategory map[string][]domain.Product
	byQuery    map[string][]domain.Product
	err        error
	gate       chan struct{}

	productCalls  []productCall
	categoryCalls []string
	searchCalls   []string
}

type productCall struct {
	limit, skip int
	sort        *domain.SortOption
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:      make(map[int][]domain.Product),
		byCategory: make(map[string][]domain.Product),
		byQuery:    make(map[string][]domain.Product),
	}
}

func (f *fakeFetcher) wait() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeFetcher) Products(_ context.Context, limit, skip int, sort *domain.SortOption) (domain.PagedProducts, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls = append(f.productCalls, productCall{limit: limit, skip: skip, sort: sort})
	if f.err != nil {
		return domain.PagedProducts{}, f.err
	}
	products := f.pages[skip]
	return domain.PagedProducts{Products: products, Total: 200, Skip: skip, Limit: limit}, nil
}

func (f *fakeFetcher) ProductsByCategory(_ context.Context, slug string) ([]domain.Product, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls = append(f.categoryCalls, slug)
	if f.err != nil {
		return nil, f.err
	}
	return f.byCategory[slug], nil
}

func (f *fakeFetcher) Search(_ context.Context, query string, _ *domain.SortOption) ([]domain.Product, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

func (f *fakeFetcher) setError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFetcher) searchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

func (f *fakeFetcher) productCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.productCalls)
}

func makeProducts(startID, n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Product{ID: startID + i, Title: "p", Price: float64(10 + i), Stock: 5})
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(f Fetcher) *Coordinator {
	return NewCoordinator(f, Config{PageSize: 20, SearchDebounce: 5 * time.Millisecond}, testLogger())
}

// waitFor polls the condition until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	waitFor(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return !c.inFlight
	})
}

func strPtr(s string) *string { return &s }

// ============================================================================
// Initial load and pagination
// ============================================================================

func TestCoordinator_LoadInitial(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Len(t, snap.Products, 20)
	assert.True(t, snap.CanLoadMore)
	assert.Equal(t, LoadingNone, snap.Loading)
	assert.False(t, snap.IsEmpty)
}

func TestCoordinator_LoadNextPage_AppendsAndStopsAtShortPage(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.pages[20] = makeProducts(21, 10) // short page: the catalog is exhausted
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	c.LoadNextPage()
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Len(t, snap.Products, 30)
	assert.False(t, snap.CanLoadMore)

	// Further pagination attempts are dropped.
	before := f.productCallCount()
	c.LoadNextPage()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, f.productCallCount())
}

func TestCoordinator_LoadNextPage_RequestsCorrectOffset(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.pages[20] = makeProducts(21, 20)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)
	c.LoadNextPage()
	waitIdle(t, c)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.productCalls, 2)
	assert.Equal(t, 0, f.productCalls[0].skip)
	assert.Equal(t, 20, f.productCalls[1].skip)
	assert.Equal(t, 20, f.productCalls[1].limit)
}

func TestCoordinator_LoadNextPage_FailureRollsBack(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.pages[20] = makeProducts(21, 20)
	c := newTestCoordinator(f)

	errs, cancel := c.Errors().Subscribe()
	defer cancel()

	c.LoadInitial()
	waitIdle(t, c)

	f.setError(errors.New("boom"))
	c.LoadNextPage()
	waitIdle(t, c)

	select {
	case err := <-errs:
		assert.EqualError(t, err, "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("no error surfaced")
	}

	// Loaded products survive the failure.
	snap := c.Snapshot()
	assert.Len(t, snap.Products, 20)
	assert.True(t, snap.CanLoadMore)

	// Retry resumes from the same offset.
	f.setError(nil)
	c.LoadNextPage()
	waitIdle(t, c)

	f.mu.Lock()
	lastSkip := f.productCalls[len(f.productCalls)-1].skip
	f.mu.Unlock()
	assert.Equal(t, 20, lastSkip)
	assert.Len(t, c.Snapshot().Products, 40)
}

func TestCoordinator_LoadNextPage_DeduplicatesAcrossPages(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	// The second page overlaps the first by five items.
	f.pages[20] = append(makeProducts(16, 5), makeProducts(21, 15)...)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)
	c.LoadNextPage()
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Len(t, snap.Products, 35)
	seen := make(map[int]bool)
	for _, p := range snap.Products {
		assert.False(t, seen[p.ID], "duplicate product %d", p.ID)
		seen[p.ID] = true
	}
}

// ============================================================================
// Search
// ============================================================================

func TestCoordinator_Search_DebouncesKeystrokes(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["phone"] = makeProducts(1, 3)
	c := newTestCoordinator(f)

	c.SetSearchText("p")
	c.SetSearchText("ph")
	c.SetSearchText("phone")

	waitFor(t, func() bool { return f.searchCallCount() > 0 })
	waitIdle(t, c)

	// Only the settled text triggered a fetch.
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"phone"}, f.searchCalls)
}

func TestCoordinator_Search_DisablesPagination(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["phone"] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	c.SetSearchText("phone")
	waitFor(t, func() bool { return f.searchCallCount() > 0 })
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.False(t, snap.CanLoadMore)

	c.LoadNextPage()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.productCallCount())
}

func TestCoordinator_Search_SameTextIsNoop(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["phone"] = makeProducts(1, 3)
	c := newTestCoordinator(f)

	c.SetSearchText("phone")
	waitFor(t, func() bool { return f.searchCallCount() == 1 })
	waitIdle(t, c)

	c.SetSearchText("phone")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, f.searchCallCount())
}

func TestCoordinator_Search_EmptyTextReloadsList(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.byQuery["phone"] = makeProducts(100, 2)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	c.SetSearchText("phone")
	waitFor(t, func() bool { return f.searchCallCount() == 1 })
	waitIdle(t, c)
	assert.Len(t, c.Snapshot().Products, 2)

	c.SetSearchText("")
	waitFor(t, func() bool { return f.productCallCount() >= 2 })
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Len(t, snap.Products, 20)
	assert.True(t, snap.CanLoadMore)
	assert.Empty(t, snap.SearchText)
}

func TestCoordinator_ClearSearch_CancelsPendingDebounce(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	c.SetSearchText("phone")
	c.ClearSearch()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, f.searchCallCount())
	assert.Empty(t, c.Snapshot().SearchText)
}

func TestCoordinator_StaleSearchResultDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["old"] = makeProducts(1, 5)
	f.byQuery["new"] = makeProducts(100, 2)
	c := newTestCoordinator(f)

	// Hold the first search open while a second supersedes it.
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	c.SetSearchText("old")
	time.Sleep(20 * time.Millisecond) // debounce fired; fetch blocked on gate

	f.mu.Lock()
	f.gate = nil
	f.mu.Unlock()

	c.SetSearchText("new")
	time.Sleep(20 * time.Millisecond)
	close(gate) // release the stale fetch

	waitFor(t, func() bool { return f.searchCallCount() == 2 })
	waitIdle(t, c)

	// Regardless of completion order, only the latest query's results win.
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return len(snap.Products) == 2 && snap.Products[0].ID == 100
	})
}

// ============================================================================
// Filtering
// ============================================================================

func TestCoordinator_CategoryFilter_NonPaginated(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.byCategory["smartphones"] = makeProducts(50, 5)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	c.SetFilter(domain.FilterOptions{Category: strPtr("smartphones")})
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Len(t, snap.Products, 5)
	assert.False(t, snap.CanLoadMore)

	c.LoadNextPage()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.productCallCount())
}

func TestCoordinator_CategoryFilter_SortedClientSide(t *testing.T) {
	f := newFakeFetcher()
	f.byCategory["beauty"] = []domain.Product{
		{ID: 1, Price: 30, Stock: 1},
		{ID: 2, Price: 10, Stock: 1},
		{ID: 3, Price: 20, Stock: 1},
	}
	c := newTestCoordinator(f)

	sort := domain.SortPriceAsc
	c.SetSort(&sort)
	waitIdle(t, c)

	c.SetFilter(domain.FilterOptions{Category: strPtr("beauty")})
	waitIdle(t, c)

	snap := c.Snapshot()
	require.Len(t, snap.Products, 3)
	assert.Equal(t, 2, snap.Products[0].ID)
	assert.Equal(t, 3, snap.Products[1].ID)
	assert.Equal(t, 1, snap.Products[2].ID)
}

func TestCoordinator_SetFilter_UnchangedIsNoop(t *testing.T) {
	f := newFakeFetcher()
	f.byCategory["beauty"] = makeProducts(1, 2)
	c := newTestCoordinator(f)

	filter := domain.FilterOptions{Category: strPtr("beauty")}
	c.SetFilter(filter)
	waitIdle(t, c)

	f.mu.Lock()
	calls := len(f.categoryCalls)
	f.mu.Unlock()
	require.Equal(t, 1, calls)

	c.SetFilter(domain.FilterOptions{Category: strPtr("beauty")})
	time.Sleep(20 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, len(f.categoryCalls))
}

func TestCoordinator_PriceFilter_RefinesClientSide(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = []domain.Product{
		{ID: 1, Price: 5, Stock: 1},
		{ID: 2, Price: 50, Stock: 1},
		{ID: 3, Price: 500, Stock: 1},
	}
	c := newTestCoordinator(f)

	maxPrice := 100.0
	c.SetFilter(domain.FilterOptions{MaxPrice: &maxPrice})
	waitIdle(t, c)

	snap := c.Snapshot()
	require.Len(t, snap.Products, 2)
	assert.Equal(t, 1, snap.Products[0].ID)
	assert.Equal(t, 2, snap.Products[1].ID)
}

func TestCoordinator_SearchCombinedWithCategory(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["cream"] = []domain.Product{
		{ID: 1, Category: "beauty", Stock: 1},
		{ID: 2, Category: "groceries", Stock: 1},
		{ID: 3, Category: "beauty", Stock: 1},
	}
	c := newTestCoordinator(f)

	c.SetFilter(domain.FilterOptions{Category: strPtr("beauty")})
	waitIdle(t, c)

	c.SetSearchText("cream")
	waitFor(t, func() bool { return f.searchCallCount() > 0 })
	waitIdle(t, c)

	snap := c.Snapshot()
	require.Len(t, snap.Products, 2)
	assert.Equal(t, 1, snap.Products[0].ID)
	assert.Equal(t, 3, snap.Products[1].ID)
}

// ============================================================================
// Sort and refresh
// ============================================================================

func TestCoordinator_SetSort_ResetsAndReloads(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	sort := domain.SortPriceDesc
	c.SetSort(&sort)
	waitIdle(t, c)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.productCalls, 2)
	require.NotNil(t, f.productCalls[1].sort)
	assert.Equal(t, domain.SortPriceDesc, *f.productCalls[1].sort)
	assert.Equal(t, 0, f.productCalls[1].skip)
}

func TestCoordinator_SetSort_UnchangedIsNoop(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	sort := domain.SortPriceDesc
	c.SetSort(&sort)
	waitIdle(t, c)

	same := domain.SortPriceDesc
	c.SetSort(&same)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, f.productCallCount())
}

func TestCoordinator_Refresh_ReportsRefreshLoading(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	loadingCh, cancel := c.LoadingUpdates().Subscribe()
	defer cancel()
	// Replay of the current idle state.
	assert.Equal(t, LoadingNone, <-loadingCh)

	c.Refresh()
	assert.Equal(t, LoadingRefresh, <-loadingCh)
	assert.Equal(t, LoadingNone, <-loadingCh)
}

// ============================================================================
// Loading and empty streams
// ============================================================================

func TestCoordinator_BackgroundSearchWithVisibleProducts(t *testing.T) {
	f := newFakeFetcher()
	f.pages[0] = makeProducts(1, 20)
	f.byQuery["phone"] = makeProducts(100, 2)
	c := newTestCoordinator(f)

	c.LoadInitial()
	waitIdle(t, c)

	loadingCh, cancel := c.LoadingUpdates().Subscribe()
	defer cancel()
	require.Equal(t, LoadingNone, <-loadingCh)

	c.SetSearchText("phone")
	waitFor(t, func() bool { return f.searchCallCount() > 0 })
	waitIdle(t, c)

	// The list was populated, so no search spinner state was published.
	select {
	case state := <-loadingCh:
		t.Fatalf("unexpected loading transition %q", state)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestCoordinator_EmptyStream(t *testing.T) {
	f := newFakeFetcher()
	f.byQuery["nothing"] = nil
	f.pages[0] = makeProducts(1, 20)
	c := newTestCoordinator(f)

	emptyCh, cancel := c.EmptyUpdates().Subscribe()
	defer cancel()
	assert.True(t, <-emptyCh)

	c.LoadInitial()
	assert.False(t, <-emptyCh)

	c.SetSearchText("nothing")
	assert.True(t, <-emptyCh)
}
