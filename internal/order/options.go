package order

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/boston-kebab/kiosk/internal/menu"
)

// SelectedOptions maps an option group id to the choices picked in it, in
// selection order, unique by choice id. Choices are stored as snapshots so
// committed lines never observe later catalog changes.
type SelectedOptions map[string][]menu.Choice

// Clone deep-copies the selection.
func (s SelectedOptions) Clone() SelectedOptions {
	out := make(SelectedOptions, len(s))
	for groupID, choices := range s {
		out[groupID] = append([]menu.Choice(nil), choices...)
	}
	return out
}

// IsSelected reports whether the choice is picked in the group.
func (s SelectedOptions) IsSelected(groupID, choiceID string) bool {
	for _, c := range s[groupID] {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// Count returns the number of choices picked in the group.
func (s SelectedOptions) Count(groupID string) int {
	return len(s[groupID])
}

// All returns every picked choice, groups in sorted id order and choices in
// selection order, for stable display and summaries.
func (s SelectedOptions) All() []menu.Choice {
	groupIDs := make([]string, 0, len(s))
	for id := range s {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	var out []menu.Choice
	for _, id := range groupIDs {
		out = append(out, s[id]...)
	}
	return out
}

// PriceDelta sums the price deltas of every picked choice.
func (s SelectedOptions) PriceDelta() decimal.Decimal {
	total := decimal.Zero
	for _, choices := range s {
		for _, c := range choices {
			total = total.Add(c.Price)
		}
	}
	return total
}
