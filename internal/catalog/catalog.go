package catalog

import "fmt"

// Product is one configurable outdoor kitchen model from the static catalog.
type Product struct {
	ID       int64     `json:"id"`
	Handle   string    `json:"handle"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// Variant is a concrete size/color configuration of a product. Prices are
// integer minor currency units (cents). PaymentLink, when present, is a
// pre-provisioned hosted checkout URL for this exact variant.
type Variant struct {
	SKU            string   `json:"sku"`
	Size           string   `json:"size"`
	Color          string   `json:"color"`
	PriceCents     int64    `json:"price_cents"`
	CompareAtCents int64    `json:"compare_at_cents,omitempty"`
	Images         []string `json:"images,omitempty"`
	PaymentLink    string   `json:"payment_link,omitempty"`
}

// Title renders the variant options for display, e.g. "10 ft / Graphite".
func (v Variant) Title() string {
	if v.Size == "" && v.Color == "" {
		return v.SKU
	}
	if v.Size == "" {
		return v.Color
	}
	if v.Color == "" {
		return v.Size
	}
	return fmt.Sprintf("%s / %s", v.Size, v.Color)
}

// Image returns the primary image of the variant, or "" when it has none.
func (v Variant) Image() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}
