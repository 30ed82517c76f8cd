package order

import (
	"github.com/shopspring/decimal"
)

// CartLine is one committed, priced entry in the basket. All fields are
// snapshots taken at commit time: later catalog edits (price, availability)
// never alter an existing line.
type CartLine struct {
	LineID         string          `json:"line_id"`
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"image_url"`
	Quantity       int             `json:"quantity"`
	Options        SelectedOptions `json:"selected_options"`
	Notes          string          `json:"notes,omitempty"`
	UnitBasePrice  decimal.Decimal `json:"unit_base_price"`
	UnitTotalPrice decimal.Decimal `json:"unit_total_price"`
}

// Subtotal is the line's contribution to the order: unit total times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitTotalPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals aggregates the whole cart.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Cart is the insertion-ordered collection of committed lines. It is not
// safe for concurrent use on its own; the owning session serializes access.
type Cart struct {
	lines []CartLine
}

// AddOrReplace inserts the line, replacing in place when a line with the
// same id already exists (the draft edit path) and appending otherwise.
func (c *Cart) AddOrReplace(line CartLine) {
	for i := range c.lines {
		if c.lines[i].LineID == line.LineID {
			c.lines[i] = line
			return
		}
	}
	c.lines = append(c.lines, line)
}

// Line returns the line with the given id.
func (c *Cart) Line(lineID string) (CartLine, bool) {
	for _, l := range c.lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// UpdateQuantity applies a delta to a line's quantity, flooring at 1.
// Unknown ids are a no-op: stale references from the UI or the assistant
// must never fault the session.
func (c *Cart) UpdateQuantity(lineID string, delta int) {
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			q := c.lines[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			c.lines[i].Quantity = q
			return
		}
	}
}

// Remove deletes the line if present; unknown ids are a no-op.
func (c *Cart) Remove(lineID string) {
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Totals recomputes the subtotal and item count on demand. Lines are few
// and mutations user-paced, so nothing is cached.
func (c *Cart) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero}
	for _, l := range c.lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
		t.ItemCount += l.Quantity
	}
	return t
}

// Clear empties the cart. Called only by the explicit finish action, never
// by placing an order.
func (c *Cart) Clear() {
	c.lines = nil
}
