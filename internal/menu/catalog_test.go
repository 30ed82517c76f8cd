package menu_test

import (
	"strings"
	"testing"

	"github.com/boston-kebab/kiosk/internal/enum"
	"github.com/boston-kebab/kiosk/internal/menu"
)

func loadCatalog(t *testing.T) *menu.Catalog {
	t.Helper()
	c, err := menu.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return c
}

func TestLoadDefault(t *testing.T) {
	c := loadCatalog(t)

	items := c.Items()
	if len(items) != 10 {
		t.Fatalf("got %d items, want 10", len(items))
	}
	if len(c.Categories()) != 5 {
		t.Fatalf("got %d categories, want 5", len(c.Categories()))
	}

	item, ok := c.Item("lamb-shish-plate")
	if !ok {
		t.Fatal("lamb-shish-plate missing")
	}
	if item.Price.String() != "18.99" {
		t.Errorf("price = %s, want 18.99", item.Price)
	}
	if len(item.Options) != 2 {
		t.Errorf("got %d option groups, want 2", len(item.Options))
	}
	sauce, ok := item.Group("sauce")
	if !ok {
		t.Fatal("sauce group missing")
	}
	if sauce.Selection != enum.SelectionMulti || sauce.MaxSelections != 2 {
		t.Errorf("sauce group = %+v, want multi with cap 2", sauce)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "duplicate item id",
			json: `{"categories":[{"id":"a","name":"A"}],"items":[
				{"id":"x","category_id":"a","name":"One","price":"1.00","available":true,"options":[]},
				{"id":"x","category_id":"a","name":"Two","price":"1.00","available":true,"options":[]}]}`,
		},
		{
			name: "unknown category",
			json: `{"categories":[{"id":"a","name":"A"}],"items":[
				{"id":"x","category_id":"nope","name":"One","price":"1.00","available":true,"options":[]}]}`,
		},
		{
			name: "negative price",
			json: `{"categories":[{"id":"a","name":"A"}],"items":[
				{"id":"x","category_id":"a","name":"One","price":"-1.00","available":true,"options":[]}]}`,
		},
		{
			name: "invalid selection mode",
			json: `{"categories":[{"id":"a","name":"A"}],"items":[
				{"id":"x","category_id":"a","name":"One","price":"1.00","available":true,"options":[
					{"id":"g","name":"G","selection":"triple","choices":[{"id":"c","name":"C","price":"0"}]}]}]}`,
		},
		{
			name: "reserved category id",
			json: `{"categories":[{"id":"popular","name":"Popular"}],"items":[
				{"id":"x","category_id":"popular","name":"One","price":"1.00","available":true,"options":[]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := menu.Parse([]byte(tt.json)); err == nil {
				t.Fatal("Parse accepted an invalid catalog")
			}
		})
	}
}

func TestMatch(t *testing.T) {
	c := loadCatalog(t)

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"shish", "Lamb Shish Plate", true},
		{"SHISH", "Lamb Shish Plate", true},
		{"  lamb shish plate  ", "Lamb Shish Plate", true},
		{"turkish", "Turkish Coffee", true},
		{"falafel", "Falafel Wrap", true},
		{"hallo", "Halloumi Sticks", true},
		{"pizza", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		item, ok := c.Match(tt.query)
		if ok != tt.found {
			t.Errorf("Match(%q) found = %v, want %v", tt.query, ok, tt.found)
			continue
		}
		if ok && item.Name != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.query, item.Name, tt.want)
		}
	}
}

func TestMatchPrefersExactOverSubstring(t *testing.T) {
	c := loadCatalog(t)
	// "chicken adana" is an exact name; "chicken" alone should still
	// resolve to it by prefix even though other names could contain it.
	item, ok := c.Match("chicken adana")
	if !ok || item.ID != "chicken-adana" {
		t.Fatalf("exact match failed: %+v ok=%v", item, ok)
	}
}

func TestFilter(t *testing.T) {
	c := loadCatalog(t)

	popular := c.Filter(enum.CategoryPopular, "")
	if len(popular) == 0 {
		t.Fatal("popular filter returned nothing")
	}
	for _, item := range popular {
		if !item.Popular {
			t.Errorf("item %s is not popular", item.ID)
		}
	}

	plates := c.Filter("plates", "")
	if len(plates) != 3 {
		t.Errorf("got %d plates, want 3", len(plates))
	}

	// Search overrides the category filter.
	results := c.Filter("drinks", "falafel")
	if len(results) != 1 || results[0].ID != "falafel-wrap" {
		t.Errorf("search override failed: %+v", results)
	}

	// Search matches descriptions too.
	results = c.Filter("", "chickpeas")
	if len(results) != 1 || !strings.Contains(results[0].Description, "chickpeas") {
		t.Errorf("description search failed: %+v", results)
	}
}

func TestAvailabilityToggle(t *testing.T) {
	c := loadCatalog(t)

	available, err := c.ToggleAvailability("halloumi-sticks")
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if !available {
		t.Error("halloumi-sticks should flip to available")
	}
	item, _ := c.Item("halloumi-sticks")
	if !item.Available {
		t.Error("snapshot does not reflect the toggle")
	}

	if _, err := c.ToggleAvailability("no-such-item"); err == nil {
		t.Error("toggle of unknown item should fail")
	}

	if err := c.SetAvailability("halloumi-sticks", false); err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	item, _ = c.Item("halloumi-sticks")
	if item.Available {
		t.Error("SetAvailability(false) not applied")
	}
}
