package cart

import "time"

// Line is one configured variant in a cart. SKU is the uniqueness key:
// adding the same SKU again merges into the existing line.
type Line struct {
	ProductID int64  `json:"product_id"`
	Handle    string `json:"handle"`
	SKU       string `json:"sku"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Qty       int    `json:"qty"`
}

// Cart is an ordered list of lines owned by one browsing session. It has no
// durable backing; when the session expires the cart is gone.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(id string) *Cart {
	now := time.Now()
	return &Cart{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AddLine merges l into the cart. An existing line with the same SKU keeps
// its position and gains l.Qty; otherwise l is appended. Quantities below 1
// count as 1.
func (c *Cart) AddLine(l Line) {
	if l.Qty < 1 {
		l.Qty = 1
	}
	for i := range c.Lines {
		if c.Lines[i].SKU == l.SKU {
			c.Lines[i].Qty += l.Qty
			c.touch()
			return
		}
	}
	c.Lines = append(c.Lines, l)
	c.touch()
}

// RemoveLine deletes the line with the given SKU. No-op when absent.
func (c *Cart) RemoveLine(sku string) {
	for i := range c.Lines {
		if c.Lines[i].SKU == sku {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// UpdateQty sets the quantity of the line with the given SKU. A quantity of
// zero or less removes the line. No-op when the SKU is absent.
func (c *Cart) UpdateQty(sku string, qty int) {
	if qty <= 0 {
		c.RemoveLine(sku)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].SKU == sku {
			c.Lines[i].Qty = qty
			c.touch()
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
	c.touch()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// DistinctSKUs counts the distinct lines; lines are already unique per SKU.
func (c *Cart) DistinctSKUs() int {
	return len(c.Lines)
}

// Clone returns a deep copy so stores can hand out carts without sharing
// the line slice.
func (c *Cart) Clone() *Cart {
	out := *c
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return &out
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
