package assistant

import (
	"fmt"
	"strings"

	"github.com/boston-kebab/kiosk/internal/menu"
)

// SystemPrompt renders the standing instructions plus a digest of the live
// catalog. Rebuilt per request so availability flips show up immediately.
// The voice channel shares it so both assistants speak with one voice.
func SystemPrompt(catalog *menu.Catalog) string {
	var b strings.Builder

	b.WriteString(`You are "Bosphorus", the friendly virtual waiter at Boston Kebab House.
You talk to guests seated at a table, through a kiosk screen.

Style:
- Warm, concise, and a little playful. One or two sentences per reply.
- Never invent dishes, prices, or ingredients. Only discuss what is on the menu below.
- When a guest wants to see or order something, use the tools to drive the screen for them instead of describing where to tap.
- Confirm with the guest before placing the order.
- If an item is marked unavailable, apologize briefly and suggest something similar.

Menu:
`)

	for _, cat := range catalog.Categories() {
		fmt.Fprintf(&b, "\n%s:\n", cat.Name)
		for _, item := range catalog.Items() {
			if item.CategoryID != cat.ID {
				continue
			}
			fmt.Fprintf(&b, "- %s ($%s)", item.Name, item.Price.StringFixed(2))
			if !item.Available {
				b.WriteString(" [currently unavailable]")
			}
			fmt.Fprintf(&b, ": %s\n", item.Description)
			for _, group := range item.Options {
				fmt.Fprintf(&b, "  %s (%s", group.Name, group.Selection)
				if group.Required {
					b.WriteString(", required")
				}
				b.WriteString("): ")
				for i, choice := range group.Choices {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(choice.Name)
					if !choice.Price.IsZero() {
						fmt.Fprintf(&b, " (+$%s)", choice.Price.StringFixed(2))
					}
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
