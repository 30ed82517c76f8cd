package enum

// --- Screens (finite views of the kiosk flow) ---

const (
	ScreenWelcome = "welcome"
	ScreenMenu    = "menu"
	ScreenCart    = "cart"
	ScreenSuccess = "success"
)

// --- Option group selection modes ---

const (
	SelectionSingle = "single"
	SelectionMulti  = "multi"
)

// CategoryPopular is the synthetic category that filters on the popular
// flag instead of a real category id.
const CategoryPopular = "popular"

// IsScreen reports whether s is a known screen id.
func IsScreen(s string) bool {
	switch s {
	case ScreenWelcome, ScreenMenu, ScreenCart, ScreenSuccess:
		return true
	}
	return false
}

// IsSelectionType reports whether s is a known selection mode.
func IsSelectionType(s string) bool {
	switch s {
	case SelectionSingle, SelectionMulti:
		return true
	}
	return false
}
