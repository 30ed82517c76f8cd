package bridge

import "github.com/tmc/langchaingo/llms"

// Tools returns the operation catalog as function declarations for the
// language model. The names here are the same ones Dispatch switches on.
func Tools() []llms.Tool {
	return []llms.Tool{
		functionTool(OpOpenMenuItem,
			"Open a menu item so the guest can pick options and add it to the order. Use the item's name as the guest said it.",
			map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Name of the menu item to open, e.g. \"Lamb Shish Plate\".",
				},
			},
			[]string{"name"},
		),
		functionTool(OpNavigateTo,
			"Switch the kiosk to a different screen.",
			map[string]any{
				"screen": map[string]any{
					"type":        "string",
					"enum":        []string{"welcome", "menu", "cart"},
					"description": "Screen to show.",
				},
			},
			[]string{"screen"},
		),
		functionTool(OpSetCategory,
			"Filter the menu to one category, like tapping a category tab.",
			map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Category id, e.g. \"plates\" or \"popular\".",
				},
			},
			[]string{"category"},
		),
		functionTool(OpSearchFor,
			"Search the menu by free text. The search result replaces the category filter until it is cleared.",
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to match against item names and descriptions.",
				},
			},
			[]string{"query"},
		),
		functionTool(OpViewCart,
			"Show the guest their cart with the running subtotal.",
			map[string]any{}, nil,
		),
		functionTool(OpPlaceOrder,
			"Send the current cart to the kitchen. Only call this after the guest confirms they are ready to order.",
			map[string]any{}, nil,
		),
		functionTool(OpGetCartItems,
			"Read the cart contents. Returns JSON with the items, quantities, unit prices, subtotal, and item count. Does not change anything on screen.",
			map[string]any{}, nil,
		),
	}
}

func functionTool(name, description string, properties map[string]any, required []string) llms.Tool {
	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}
