package order

import (
	"github.com/shopspring/decimal"

	"github.com/boston-kebab/kiosk/internal/menu"
)

// UnitPrice computes one unit's price: the item's base price plus the delta
// of every selected choice across all groups. Pure; used identically for
// live draft previews and for finalizing a commit, so the previewed total
// always equals the committed total. Rounding to two decimals happens only
// at the presentation edge, never here.
func UnitPrice(item menu.MenuItem, selected SelectedOptions) decimal.Decimal {
	return item.Price.Add(selected.PriceDelta())
}
