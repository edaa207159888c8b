package checkout

import (
	"github.com/keaunie/elev8kitchens-backend/internal/cart"
	"github.com/keaunie/elev8kitchens-backend/internal/catalog"
)

// Shipping for kitchen islands is quoted manually after checkout, so the
// summary always carries zero placeholders with these labels.
const (
	ShippingPlaceholder = "Quoted after checkout"
	TaxPlaceholder      = "Calculated with shipping quote"
)

// HydratedLine is a cart line joined against the current catalog. It is
// derived on every read and never stored, so price and image always reflect
// the catalog as it is now, not as it was when the line was added.
type HydratedLine struct {
	Line         cart.Line `json:"line"`
	Title        string    `json:"title"`
	VariantTitle string    `json:"variant_title"`
	PriceCents   int64     `json:"price_cents"`
	CompareAt    int64     `json:"compare_at_cents,omitempty"`
	Image        string    `json:"image,omitempty"`
	PaymentLink  string    `json:"payment_link,omitempty"`

	// Unavailable marks a line whose product or variant no longer exists
	// in the catalog. It contributes nothing to the total and blocks the
	// single-SKU fast path.
	Unavailable bool `json:"unavailable,omitempty"`
}

type Summary struct {
	SubtotalCents int64  `json:"subtotal_cents"`
	ShippingCents int64  `json:"shipping_cents"`
	ShippingLabel string `json:"shipping_label"`
	TaxCents      int64  `json:"tax_cents"`
	TaxLabel      string `json:"tax_label"`
	TotalCents    int64  `json:"total_cents"`
}

// Hydrator projects cart lines and the catalog into display lines and totals.
type Hydrator struct {
	catalog *catalog.Store
}

func NewHydrator(store *catalog.Store) *Hydrator {
	return &Hydrator{catalog: store}
}

// Hydrate returns exactly one hydrated line per cart line, in cart order.
func (h *Hydrator) Hydrate(c *cart.Cart) ([]HydratedLine, Summary) {
	lines := make([]HydratedLine, 0, len(c.Lines))
	var subtotal int64

	for _, l := range c.Lines {
		hl := HydratedLine{Line: l}

		product, ok := h.catalog.ProductByHandleOrID(l.Handle, l.ProductID)
		if !ok {
			hl.Unavailable = true
			lines = append(lines, hl)
			continue
		}

		variant, ok := catalog.FindVariant(product, l.SKU, l.Size, l.Color)
		if !ok {
			hl.Title = product.Title
			hl.Unavailable = true
			lines = append(lines, hl)
			continue
		}

		hl.Title = product.Title
		hl.VariantTitle = variant.Title()
		hl.PriceCents = variant.PriceCents
		hl.CompareAt = variant.CompareAtCents
		hl.Image = variant.Image()
		hl.PaymentLink = variant.PaymentLink

		subtotal += variant.PriceCents * int64(l.Qty)
		lines = append(lines, hl)
	}

	summary := Summary{
		SubtotalCents: subtotal,
		ShippingLabel: ShippingPlaceholder,
		TaxLabel:      TaxPlaceholder,
		TotalCents:    subtotal,
	}
	return lines, summary
}
