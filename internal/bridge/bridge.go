// Package bridge is the only path by which an external agent (the
// conversational assistant, or any agentic caller) touches application
// state. It exposes a closed catalog of named operations over a session;
// each decodes loosely-typed arguments, applies the same validation as the
// direct UI path, and returns a short status string for the agent to relay.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/boston-kebab/kiosk/internal/enum"
	"github.com/boston-kebab/kiosk/internal/order"
	"github.com/boston-kebab/kiosk/internal/session"
)

// Operation names as declared to the remote agent.
const (
	OpOpenMenuItem = "openMenuItem"
	OpNavigateTo   = "navigateTo"
	OpSetCategory  = "setCategory"
	OpSearchFor    = "searchFor"
	OpViewCart     = "viewCart"
	OpPlaceOrder   = "placeOrder"
	OpGetCartItems = "getCartItems"
)

// Errors returned for malformed invocations. Domain outcomes (item not
// found, unavailable, empty cart) are reported in the returned message,
// not as errors, so a bad reference leaves the agent usable.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrBadArgument      = errors.New("invalid argument")
)

// Invocation is one loosely-typed call from the remote side.
type Invocation struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// cartSummary is the serialized shape returned by getCartItems.
type cartSummary struct {
	Items     []cartSummaryItem `json:"items"`
	Subtotal  string            `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

type cartSummaryItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Dispatch validates and executes one invocation against the session.
// Unknown names and malformed arguments return an explicit error; every
// recognized operation returns a status string and never panics.
func Dispatch(sess *session.Session, inv Invocation) (string, error) {
	switch inv.Name {
	case OpOpenMenuItem:
		name, err := stringArg(inv.Args, "name")
		if err != nil {
			return "", err
		}
		return openMenuItem(sess, name), nil

	case OpNavigateTo:
		screen, err := stringArg(inv.Args, "screen")
		if err != nil {
			return "", err
		}
		return navigateTo(sess, screen), nil

	case OpSetCategory:
		category, err := stringArg(inv.Args, "category")
		if err != nil {
			return "", err
		}
		return setCategory(sess, category), nil

	case OpSearchFor:
		query, err := stringArg(inv.Args, "query")
		if err != nil {
			return "", err
		}
		return searchFor(sess, query), nil

	case OpViewCart:
		return viewCart(sess), nil

	case OpPlaceOrder:
		return placeOrder(sess), nil

	case OpGetCartItems:
		return getCartItems(sess), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, inv.Name)
}

// DecodeArgs parses the JSON argument blob a model attaches to a tool
// call. An empty blob means no arguments.
func DecodeArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return args, nil
}

// stringArg extracts a required non-empty string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrBadArgument, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrBadArgument, key)
	}
	return s, nil
}

// openMenuItem resolves a free-text name against the catalog and opens the
// configuration draft through the same gating as the direct UI path. An
// unavailable item is reported, never silently opened.
func openMenuItem(sess *session.Session, name string) string {
	item, ok := sess.Catalog().Match(name)
	if !ok {
		return fmt.Sprintf("I couldn't find %q on the menu.", name)
	}

	switch err := sess.OpenItem(item.ID); {
	case err == nil:
		_ = sess.JumpTo(enum.ScreenMenu)
		return fmt.Sprintf("Opened %s ($%s) so you can pick your options.",
			item.Name, item.Price.StringFixed(2))
	case errors.Is(err, order.ErrItemUnavailable):
		return fmt.Sprintf("%s is currently unavailable. The kitchen will bring it back soon.", item.Name)
	case errors.Is(err, session.ErrStaffModeActive):
		return "Ordering is paused while staff mode is on."
	default:
		return fmt.Sprintf("I couldn't open %s right now.", item.Name)
	}
}

// navigateTo jumps to a screen unconditionally; this is the assistant's
// override surface over the normal transition graph.
func navigateTo(sess *session.Session, screen string) string {
	if err := sess.JumpTo(screen); err != nil {
		return fmt.Sprintf("There's no %q screen. I can show the welcome, menu, or cart screen.", screen)
	}
	return fmt.Sprintf("Taking you to the %s screen.", screen)
}

func setCategory(sess *session.Session, category string) string {
	if err := sess.SetCategory(category); err != nil {
		return fmt.Sprintf("We don't have a %q category.", category)
	}
	return fmt.Sprintf("Showing the %s section of the menu.", category)
}

func searchFor(sess *session.Session, query string) string {
	sess.SetSearch(query)
	n := len(sess.VisibleItems())
	if n == 0 {
		return fmt.Sprintf("Nothing on the menu matches %q.", query)
	}
	return fmt.Sprintf("Filtering the menu for %q, %d match(es).", query, n)
}

func viewCart(sess *session.Session) string {
	_ = sess.JumpTo(enum.ScreenCart)
	totals := sess.CartTotals()
	if totals.ItemCount == 0 {
		return "Here's your cart. It's empty so far."
	}
	return fmt.Sprintf("Here's your cart: %d item(s), $%s subtotal.",
		totals.ItemCount, totals.Subtotal.StringFixed(2))
}

// placeOrder sends the cart to the kitchen. The cart is kept: it clears
// only when the guest finishes the meal.
func placeOrder(sess *session.Session) string {
	if err := sess.PlaceOrder(); err != nil {
		return "Your cart is empty, so there's nothing to order yet."
	}
	return "Order placed! The kitchen has it and your food is on its way."
}

// getCartItems is read-only: it serializes the cart for the agent.
func getCartItems(sess *session.Session) string {
	lines := sess.CartLines()
	totals := sess.CartTotals()

	summary := cartSummary{
		Items:     make([]cartSummaryItem, 0, len(lines)),
		Subtotal:  totals.Subtotal.StringFixed(2),
		ItemCount: totals.ItemCount,
	}
	for _, l := range lines {
		summary.Items = append(summary.Items, cartSummaryItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitTotalPrice.StringFixed(2),
		})
	}

	out, err := json.Marshal(summary)
	if err != nil {
		return "The cart summary is unavailable right now."
	}
	return string(out)
}
