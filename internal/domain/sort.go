package domain

import "sort"

// SortOption identifies a product ordering. Absence (nil) means the server's
// default order.
type SortOption string

const (
	SortTitleAsc   SortOption = "title_asc"
	SortTitleDesc  SortOption = "title_desc"
	SortPriceAsc   SortOption = "price_asc"
	SortPriceDesc  SortOption = "price_desc"
	SortRatingDesc SortOption = "rating_desc"
)

// ParseSortOption validates a sort option string.
func ParseSortOption(s string) (SortOption, bool) {
	switch SortOption(s) {
	case SortTitleAsc, SortTitleDesc, SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return SortOption(s), true
	}
	return "", false
}

// Field returns the remote sortBy query parameter value.
func (s SortOption) Field() string {
	switch s {
	case SortTitleAsc, SortTitleDesc:
		return "title"
	case SortPriceAsc, SortPriceDesc:
		return "price"
	case SortRatingDesc:
		return "rating"
	}
	return ""
}

// Order returns the remote order query parameter value.
func (s SortOption) Order() string {
	switch s {
	case SortTitleAsc, SortPriceAsc:
		return "asc"
	default:
		return "desc"
	}
}

// less compares two products under this sort option.
func (s SortOption) less(a, b Product) bool {
	switch s {
	case SortTitleAsc:
		return a.Title < b.Title
	case SortTitleDesc:
		return a.Title > b.Title
	case SortPriceAsc:
		return a.Price < b.Price
	case SortPriceDesc:
		return a.Price > b.Price
	case SortRatingDesc:
		return a.Rating > b.Rating
	}
	return false
}

// Sort orders products in place. The sort is stable: ties keep the original
// response order. Used for category fetches, whose endpoint ignores sort
// parameters.
func (s SortOption) Sort(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return s.less(products[i], products[j])
	})
}
