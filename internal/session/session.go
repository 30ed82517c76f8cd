package session

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/boston-kebab/kiosk/internal/enum"
	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/order"
)

// Errors returned by session operations.
var (
	ErrStaffModeActive = errors.New("ordering is disabled in staff mode")
	ErrNotStaffMode    = errors.New("staff mode is not active")
	ErrNoActiveDraft   = errors.New("no item is being configured")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrBadTransition   = errors.New("illegal screen transition")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Session owns all mutable state for one table: the current screen, the
// menu filters, the staff-mode flag, the single active draft, and the cart.
// Every mutation runs under one mutex, giving the single-logical-thread
// discipline the kiosk needs; there is no partial-update visibility.
type Session struct {
	TableID string

	mu        sync.Mutex
	catalog   *menu.Catalog
	screen    string
	category  string
	search    string
	staffMode bool
	draft     *order.Draft
	cart      order.Cart
}

// New creates a session on the welcome screen with the popular category
// active, mirroring a kiosk that was just approached.
func New(tableID string, catalog *menu.Catalog) *Session {
	return &Session{
		TableID:  tableID,
		catalog:  catalog,
		screen:   enum.ScreenWelcome,
		category: enum.CategoryPopular,
	}
}

// Catalog exposes the shared catalog for read paths (menu listing, search).
func (s *Session) Catalog() *menu.Catalog { return s.catalog }

// --- Screen/flow controller ---

// Navigate moves between screens along the legal transitions:
// welcome to menu, menu to cart and back, success to menu. Reaching success goes through
// PlaceOrder and leaving it for welcome goes through Finish.
func (s *Session) Navigate(to string) error {
	if !enum.IsScreen(to) {
		return ErrUnknownScreen
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	legal := map[string][]string{
		enum.ScreenWelcome: {enum.ScreenMenu},
		enum.ScreenMenu:    {enum.ScreenCart},
		enum.ScreenCart:    {enum.ScreenMenu},
		enum.ScreenSuccess: {enum.ScreenMenu},
	}
	for _, next := range legal[s.screen] {
		if next == to {
			s.screen = to
			return nil
		}
	}
	return ErrBadTransition
}

// JumpTo sets the screen unconditionally. This is the assistant's override
// surface: the action bridge may land on menu or cart from anywhere.
func (s *Session) JumpTo(to string) error {
	if !enum.IsScreen(to) {
		return ErrUnknownScreen
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = to
	return nil
}

// Screen returns the current screen id.
func (s *Session) Screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// PlaceOrder moves to the success screen. The cart is deliberately left
// intact: it empties only on the explicit Finish action.
func (s *Session) PlaceOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.Len() == 0 {
		return ErrEmptyCart
	}
	s.screen = enum.ScreenSuccess
	return nil
}

// Finish ends the meal: clears the cart and returns to the welcome screen.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.screen = enum.ScreenWelcome
}

// --- Menu filters ---

// SetCategory activates a category filter and clears any search query, the
// way tapping a category tab does.
func (s *Session) SetCategory(id string) error {
	if !s.catalog.HasCategory(id) {
		return ErrUnknownCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = id
	s.search = ""
	return nil
}

// SetSearch sets the free-text filter; while non-empty it overrides the
// category filter.
func (s *Session) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

// VisibleItems returns the items matching the active filters.
func (s *Session) VisibleItems() []menu.MenuItem {
	s.mu.Lock()
	category, search := s.category, s.search
	s.mu.Unlock()
	return s.catalog.Filter(category, search)
}

// --- Staff mode ---

// SetStaffMode flips the management flag. While on, draft opening is
// suppressed and availability toggling is permitted.
func (s *Session) SetStaffMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffMode = enabled
}

// StaffMode reports whether management mode is active.
func (s *Session) StaffMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staffMode
}

// ToggleItemAvailability flips an item's availability on the shared
// catalog. Only permitted while staff mode is on.
func (s *Session) ToggleItemAvailability(itemID string) (bool, error) {
	s.mu.Lock()
	staff := s.staffMode
	s.mu.Unlock()
	if !staff {
		return false, ErrNotStaffMode
	}
	return s.catalog.ToggleAvailability(itemID)
}

// --- Draft ---

// OpenItem starts configuring an item as a new add. Refused while staff
// mode is on or when the item is unavailable; an already-open draft is
// replaced, matching the one-draft-at-a-time rule.
func (s *Session) OpenItem(itemID string) error {
	item, ok := s.catalog.Item(itemID)
	if !ok {
		return menu.ErrItemNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staffMode {
		return ErrStaffModeActive
	}
	if !item.Available {
		return order.ErrItemUnavailable
	}
	s.draft = order.NewDraft(item)
	return nil
}

// OpenLineForEdit starts configuring an existing cart line. The draft is
// seeded from the line's stored options, quantity, and notes; committing it
// replaces the line in place.
func (s *Session) OpenLineForEdit(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staffMode {
		return ErrStaffModeActive
	}
	line, ok := s.cart.Line(lineID)
	if !ok {
		return order.ErrLineNotFound
	}
	item, ok := s.catalog.Item(line.ItemID)
	if !ok {
		return menu.ErrItemNotFound
	}
	if !item.Available {
		return order.ErrItemUnavailable
	}
	s.draft = order.NewDraftFromLine(item, line)
	return nil
}

// ToggleChoice applies a selection in the active draft.
func (s *Session) ToggleChoice(groupID, choiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	return s.draft.ToggleChoice(groupID, choiceID)
}

// SetDraftQuantity sets the draft quantity (floored at 1).
func (s *Session) SetDraftQuantity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.SetQuantity(n)
	return nil
}

// AdjustDraftQuantity applies a delta to the draft quantity.
func (s *Session) AdjustDraftQuantity(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.AdjustQuantity(delta)
	return nil
}

// SetDraftNotes stores free-text notes on the draft.
func (s *Session) SetDraftNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.SetNotes(notes)
	return nil
}

// IsCommittable reports whether the draft can become a cart line: every
// required group selected and the item still available right now.
func (s *Session) IsCommittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isCommittableLocked()
}

func (s *Session) isCommittableLocked() bool {
	if s.draft == nil || len(s.draft.MissingRequired()) > 0 {
		return false
	}
	item, ok := s.catalog.Item(s.draft.Item().ID)
	return ok && item.Available
}

// CommitDraft finalizes the draft into the cart: a new line is appended, an
// edit replaces its line in place. Refused when a required group is empty
// or the item went unavailable mid-edit; no partial line is ever created.
// The draft is discarded on success.
func (s *Session) CommitDraft() (order.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return order.CartLine{}, ErrNoActiveDraft
	}
	item, ok := s.catalog.Item(s.draft.Item().ID)
	if !ok || !item.Available {
		return order.CartLine{}, order.ErrItemUnavailable
	}
	line, err := s.draft.Line()
	if err != nil {
		return order.CartLine{}, err
	}
	s.cart.AddOrReplace(line)
	s.draft = nil
	return line, nil
}

// CancelDraft discards the draft unconditionally; the cart is untouched.
func (s *Session) CancelDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// --- Cart ---

// UpdateLineQuantity applies a delta to a cart line, flooring at 1;
// unknown ids are a no-op.
func (s *Session) UpdateLineQuantity(lineID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.UpdateQuantity(lineID, delta)
}

// RemoveLine deletes a cart line; unknown ids are a no-op.
func (s *Session) RemoveLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(lineID)
}

// CartLines returns the committed lines in insertion order.
func (s *Session) CartLines() []order.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// CartTotals recomputes the cart aggregate.
func (s *Session) CartTotals() order.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

// --- Snapshot ---

// DraftView is the read model of the active draft.
type DraftView struct {
	ItemID          string                `json:"item_id"`
	ItemName        string                `json:"item_name"`
	Quantity        int                   `json:"quantity"`
	Notes           string                `json:"notes,omitempty"`
	Selected        order.SelectedOptions `json:"selected_options"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	PreviewTotal    decimal.Decimal       `json:"preview_total"`
	IsEdit          bool                  `json:"is_edit"`
	EditLineID      string                `json:"edit_line_id,omitempty"`
	MissingRequired []string              `json:"missing_required,omitempty"`
	Committable     bool                  `json:"committable"`
}

// State is the full read model handed to the UI.
type State struct {
	TableID   string           `json:"table_id"`
	Screen    string           `json:"screen"`
	Category  string           `json:"category"`
	Search    string           `json:"search,omitempty"`
	StaffMode bool             `json:"staff_mode"`
	Cart      []order.CartLine `json:"cart"`
	Totals    order.Totals     `json:"totals"`
	Draft     *DraftView       `json:"draft,omitempty"`
}

// Snapshot captures the session state atomically.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		TableID:   s.TableID,
		Screen:    s.screen,
		Category:  s.category,
		Search:    s.search,
		StaffMode: s.staffMode,
		Cart:      s.cart.Lines(),
		Totals:    s.cart.Totals(),
	}
	if s.draft != nil {
		d := s.draft
		state.Draft = &DraftView{
			ItemID:          d.Item().ID,
			ItemName:        d.Item().Name,
			Quantity:        d.Quantity(),
			Notes:           d.Notes(),
			Selected:        d.Options().Clone(),
			UnitPrice:       d.UnitPrice(),
			PreviewTotal:    d.PreviewTotal(),
			IsEdit:          d.IsEdit(),
			EditLineID:      d.EditLineID(),
			MissingRequired: d.MissingRequired(),
			Committable:     s.isCommittableLocked(),
		}
	}
	return state
}
