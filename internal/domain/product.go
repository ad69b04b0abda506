package domain

// Product is an immutable catalog item decoded from a catalog response.
// Products are compared by ID.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              *string  `json:"brand,omitempty"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// DiscountedPrice returns the price after applying the discount percentage.
func (p Product) DiscountedPrice() float64 {
	return p.Price - (p.Price * p.DiscountPercentage / 100)
}

// HasDiscount reports whether the product has a non-zero discount.
func (p Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}

// PagedProducts is the envelope returned by paginated catalog endpoints.
type PagedProducts struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Review is a customer review attached to a product detail.
type Review struct {
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail"`
}

// ProductDetail is the full single-product payload, including reviews.
type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews,omitempty"`
}

// Summary reduces the detail to a plain Product, dropping reviews.
func (d ProductDetail) Summary() Product {
	return d.Product
}

// Category is a catalog category as returned by the categories endpoint.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
