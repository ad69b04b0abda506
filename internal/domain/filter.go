package domain

// FilterOptions narrows the product list. It is an immutable value replaced
// wholesale on every change, never patched field by field.
type FilterOptions struct {
	Category  *string  `json:"category,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
	InStock   bool     `json:"in_stock"`
}

// IsActive reports whether any filter field is set.
func (f FilterOptions) IsActive() bool {
	return f.Category != nil || f.MinPrice != nil || f.MaxPrice != nil ||
		f.MinRating != nil || f.InStock
}

// HasCategory reports whether a category filter is set.
func (f FilterOptions) HasCategory() bool {
	return f.Category != nil && *f.Category != ""
}

// Equal compares two filters by value.
func (f FilterOptions) Equal(other FilterOptions) bool {
	return eqStrPtr(f.Category, other.Category) &&
		eqFloatPtr(f.MinPrice, other.MinPrice) &&
		eqFloatPtr(f.MaxPrice, other.MaxPrice) &&
		eqFloatPtr(f.MinRating, other.MinRating) &&
		f.InStock == other.InStock
}

// Matches reports whether the product satisfies the non-category filter
// fields. The category field is handled by fetch routing, not here.
func (f FilterOptions) Matches(p Product) bool {
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.InStock && p.Stock <= 0 {
		return false
	}
	return true
}

// Refine returns the products matching the non-category filter fields,
// preserving order.
func (f FilterOptions) Refine(products []Product) []Product {
	if f.MinPrice == nil && f.MaxPrice == nil && f.MinRating == nil && !f.InStock {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func eqStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
