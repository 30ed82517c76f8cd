package menu

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/boston-kebab/kiosk/internal/enum"
)

//go:embed menu.json
var defaultCatalogJSON []byte

// catalogFile is the on-disk shape of a catalog.
type catalogFile struct {
	Categories []Category `json:"categories" validate:"min=1,dive"`
	Items      []MenuItem `json:"items" validate:"min=1,dive"`
}

var validate = validator.New()

// LoadDefault parses the embedded Boston Kebab catalog.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCatalogJSON)
}

// DefaultCatalogJSON returns a copy of the embedded catalog file, the
// starting point for a customized menu.
func DefaultCatalogJSON() []byte {
	out := make([]byte, len(defaultCatalogJSON))
	copy(out, defaultCatalogJSON)
	return out
}

// Parse decodes and validates catalog JSON. Validation failures name the
// offending item so a bad catalog edit is caught at startup, not at order
// time.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	if err := checkCatalog(file); err != nil {
		return nil, err
	}
	return NewCatalog(file.Items, file.Categories), nil
}

// checkCatalog enforces the invariants the tag validator cannot express:
// id uniqueness, known category references, selection modes, and
// non-negative prices.
func checkCatalog(file catalogFile) error {
	categories := make(map[string]bool, len(file.Categories))
	for _, cat := range file.Categories {
		if cat.ID == enum.CategoryPopular {
			return fmt.Errorf("category %q: id is reserved", cat.ID)
		}
		if categories[cat.ID] {
			return fmt.Errorf("category %q: duplicate id", cat.ID)
		}
		categories[cat.ID] = true
	}

	items := make(map[string]bool, len(file.Items))
	for _, item := range file.Items {
		if items[item.ID] {
			return fmt.Errorf("item %q: duplicate id", item.ID)
		}
		items[item.ID] = true

		if !categories[item.CategoryID] {
			return fmt.Errorf("item %q: unknown category %q", item.ID, item.CategoryID)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("item %q: negative price", item.ID)
		}

		groups := make(map[string]bool, len(item.Options))
		for _, group := range item.Options {
			if groups[group.ID] {
				return fmt.Errorf("item %q: duplicate group %q", item.ID, group.ID)
			}
			groups[group.ID] = true

			if !enum.IsSelectionType(group.Selection) {
				return fmt.Errorf("item %q group %q: invalid selection %q", item.ID, group.ID, group.Selection)
			}
			if group.MaxSelections < 0 {
				return fmt.Errorf("item %q group %q: negative max_selections", item.ID, group.ID)
			}

			choices := make(map[string]bool, len(group.Choices))
			for _, choice := range group.Choices {
				if choices[choice.ID] {
					return fmt.Errorf("item %q group %q: duplicate choice %q", item.ID, group.ID, choice.ID)
				}
				choices[choice.ID] = true
				if choice.Price.IsNegative() {
					return fmt.Errorf("item %q group %q choice %q: negative price", item.ID, group.ID, choice.ID)
				}
			}
		}
	}
	return nil
}
