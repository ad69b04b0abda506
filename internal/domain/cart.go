package domain

// CartLine pairs a product with a positive quantity. Identity is the
// product ID: the cart holds at most one line per product.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns the discounted price multiplied by the quantity.
func (l CartLine) LineTotal() float64 {
	return l.Product.DiscountedPrice() * float64(l.Quantity)
}

// CartSubtotal sums the line totals of the given cart.
func CartSubtotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// CartItemCount returns the total number of units across all lines.
func CartItemCount(lines []CartLine) int {
	var count int
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
