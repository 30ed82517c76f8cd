package menu

import (
	"errors"
	"strings"
	"sync"

	"github.com/boston-kebab/kiosk/internal/enum"
)

// Errors returned by catalog lookups and mutations.
var (
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Catalog is the read-mostly collection of menu items and categories. Items
// are loaded once at startup; the only runtime mutation is the per-item
// availability flag, so a single RWMutex is enough. Availability is shared
// across every table session.
type Catalog struct {
	mu         sync.RWMutex
	items      []*MenuItem
	byID       map[string]*MenuItem
	categories []Category
}

// NewCatalog builds a catalog from validated items and categories. Items
// keep their declared order for display.
func NewCatalog(items []MenuItem, categories []Category) *Catalog {
	c := &Catalog{
		byID:       make(map[string]*MenuItem, len(items)),
		categories: categories,
	}
	for i := range items {
		item := items[i]
		c.items = append(c.items, &item)
		c.byID[item.ID] = &item
	}
	return c
}

// Item returns a snapshot of the item with the given id.
func (c *Catalog) Item(id string) (MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.byID[id]
	if !ok {
		return MenuItem{}, false
	}
	return *item, true
}

// Items returns snapshots of every item in display order.
func (c *Catalog) Items() []MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]MenuItem, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

// Categories returns the declared category list.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// HasCategory reports whether id names a declared category or the synthetic
// popular category.
func (c *Catalog) HasCategory(id string) bool {
	if id == enum.CategoryPopular {
		return true
	}
	for _, cat := range c.categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// Filter returns items matching the active filters: a non-empty search
// query matches name or description case-insensitively and overrides the
// category filter; otherwise the category filter applies, with the popular
// pseudo-category selecting flagged items.
func (c *Catalog) Filter(categoryID, search string) []MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []MenuItem
	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		for _, item := range c.items {
			if strings.Contains(strings.ToLower(item.Name), q) ||
				strings.Contains(strings.ToLower(item.Description), q) {
				out = append(out, *item)
			}
		}
		return out
	}

	for _, item := range c.items {
		switch {
		case categoryID == enum.CategoryPopular:
			if item.Popular {
				out = append(out, *item)
			}
		case item.CategoryID == categoryID:
			out = append(out, *item)
		}
	}
	return out
}

// Match resolves a free-text item name to a catalog item. Exact matches win
// over prefix matches, prefix over substring, earlier menu position breaks
// ties. Matching ignores case and surrounding whitespace.
func (c *Catalog) Match(name string) (MenuItem, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return MenuItem{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var prefix, substring *MenuItem
	for _, item := range c.items {
		n := strings.ToLower(item.Name)
		switch {
		case n == q:
			return *item, true
		case prefix == nil && strings.HasPrefix(n, q):
			prefix = item
		case substring == nil && strings.Contains(n, q):
			substring = item
		}
	}
	if prefix != nil {
		return *prefix, true
	}
	if substring != nil {
		return *substring, true
	}
	return MenuItem{}, false
}

// SetAvailability flips the staff-controlled availability flag. The change
// is in-memory only and visible to every session.
func (c *Catalog) SetAvailability(id string, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.byID[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Available = available
	return nil
}

// ToggleAvailability inverts the availability flag and returns the new value.
func (c *Catalog) ToggleAvailability(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.byID[id]
	if !ok {
		return false, ErrItemNotFound
	}
	item.Available = !item.Available
	return item.Available, nil
}
