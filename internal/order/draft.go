package order

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boston-kebab/kiosk/internal/enum"
	"github.com/boston-kebab/kiosk/internal/menu"
)

// Draft is the in-progress configuration of one menu item before it becomes
// a cart line. At most one draft exists per session; it is created when a
// guest opens an item, discarded on cancel, and converted to a CartLine on
// commit. The item is held as a snapshot; availability is re-checked against
// the live catalog by the session at commit time.
type Draft struct {
	item       menu.MenuItem
	selected   SelectedOptions
	quantity   int
	notes      string
	editLineID string
}

// NewDraft starts a fresh draft for a new add: empty selection, quantity 1.
func NewDraft(item menu.MenuItem) *Draft {
	return &Draft{
		item:     item,
		selected: make(SelectedOptions),
		quantity: 1,
	}
}

// NewDraftFromLine seeds a draft from an existing cart line for editing.
// Committing it will replace that line in place.
func NewDraftFromLine(item menu.MenuItem, line CartLine) *Draft {
	return &Draft{
		item:       item,
		selected:   line.Options.Clone(),
		quantity:   line.Quantity,
		notes:      line.Notes,
		editLineID: line.LineID,
	}
}

// Item returns the item snapshot being configured.
func (d *Draft) Item() menu.MenuItem { return d.item }

// Options returns the working selection.
func (d *Draft) Options() SelectedOptions { return d.selected }

// Quantity returns the working quantity.
func (d *Draft) Quantity() int { return d.quantity }

// Notes returns the working free-text notes.
func (d *Draft) Notes() string { return d.notes }

// IsEdit reports whether the draft replaces an existing line on commit.
func (d *Draft) IsEdit() bool { return d.editLineID != "" }

// EditLineID returns the id of the line being edited, or "".
func (d *Draft) EditLineID() string { return d.editLineID }

// ToggleChoice applies a selection in the named group. Single groups use
// idempotent-replace semantics: any selection replaces the group's whole
// selection, and re-selecting the current choice keeps it selected. Multi
// groups use true-toggle semantics: re-selecting removes; a group at its
// declared cap rejects new selections with ErrGroupFull (a cap of 0 means
// uncapped). Deselection is always allowed.
func (d *Draft) ToggleChoice(groupID, choiceID string) error {
	group, ok := d.item.Group(groupID)
	if !ok {
		return ErrGroupNotFound
	}
	choice, ok := group.Choice(choiceID)
	if !ok {
		return ErrChoiceNotFound
	}

	if group.Selection == enum.SelectionSingle {
		d.selected[groupID] = []menu.Choice{choice}
		return nil
	}

	current := d.selected[groupID]
	for i, c := range current {
		if c.ID == choiceID {
			d.selected[groupID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	if group.MaxSelections > 0 && len(current) >= group.MaxSelections {
		return ErrGroupFull
	}
	d.selected[groupID] = append(current, choice)
	return nil
}

// SetQuantity sets the working quantity, flooring at 1.
func (d *Draft) SetQuantity(n int) {
	if n < 1 {
		n = 1
	}
	d.quantity = n
}

// AdjustQuantity applies a delta, flooring at 1.
func (d *Draft) AdjustQuantity(delta int) {
	d.SetQuantity(d.quantity + delta)
}

// SetNotes stores the working notes; trimming happens at commit.
func (d *Draft) SetNotes(notes string) {
	d.notes = notes
}

// MissingRequired lists the required groups with no selection yet.
func (d *Draft) MissingRequired() []string {
	var missing []string
	for _, g := range d.item.Options {
		if g.Required && len(d.selected[g.ID]) == 0 {
			missing = append(missing, g.ID)
		}
	}
	return missing
}

// UnitPrice prices one unit of the current configuration.
func (d *Draft) UnitPrice() decimal.Decimal {
	return UnitPrice(d.item, d.selected)
}

// PreviewTotal prices the whole draft: unit price times quantity.
func (d *Draft) PreviewTotal() decimal.Decimal {
	return d.UnitPrice().Mul(decimal.NewFromInt(int64(d.quantity)))
}

// Line finalizes the draft into a cart line. Every required group must have
// a selection. The unit price is computed through the same pricing path as
// the preview. Edits keep their line id; new adds get a fresh one.
func (d *Draft) Line() (CartLine, error) {
	if len(d.MissingRequired()) > 0 {
		return CartLine{}, ErrMissingRequired
	}

	lineID := d.editLineID
	if lineID == "" {
		lineID = uuid.NewString()
	}

	return CartLine{
		LineID:         lineID,
		ItemID:         d.item.ID,
		Name:           d.item.Name,
		ImageURL:       d.item.ImageURL,
		Quantity:       d.quantity,
		Options:        d.selected.Clone(),
		Notes:          strings.TrimSpace(d.notes),
		UnitBasePrice:  d.item.Price,
		UnitTotalPrice: d.UnitPrice(),
	}, nil
}
