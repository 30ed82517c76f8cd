package menu

import (
	"github.com/shopspring/decimal"
)

// Choice is a single selectable option within a group. Price is an additive
// delta on top of the owning item's base price, never negative.
type Choice struct {
	ID    string          `json:"id" validate:"required"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// OptionGroup is a named set of related choices attached to one menu item.
// A "single" group holds at most one selection; a "multi" group holds any
// number up to MaxSelections (0 = uncapped).
type OptionGroup struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Selection     string   `json:"selection" validate:"required"`
	Required      bool     `json:"required"`
	MaxSelections int      `json:"max_selections,omitempty"`
	Choices       []Choice `json:"choices" validate:"min=1,dive"`
}

// Choice returns the choice with the given id, if present.
func (g OptionGroup) Choice(id string) (Choice, bool) {
	for _, c := range g.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// MenuItem is one orderable dish. Everything but Available is immutable
// after the catalog loads; Available flips under staff mode only.
type MenuItem struct {
	ID          string          `json:"id" validate:"required"`
	CategoryID  string          `json:"category_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	VideoURL    string          `json:"video_url,omitempty"`
	Popular     bool            `json:"popular"`
	Available   bool            `json:"available"`
	Options     []OptionGroup   `json:"options" validate:"dive"`
}

// Group returns the option group with the given id, if present.
func (m MenuItem) Group(id string) (OptionGroup, bool) {
	for _, g := range m.Options {
		if g.ID == id {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// Category is a display grouping for menu items.
type Category struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"image_url"`
}
