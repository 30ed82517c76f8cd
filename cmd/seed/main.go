// Command seed manages the menu catalog file. It validates a custom
// catalog before it ships to the kiosks, and can export the built-in
// catalog as a starting point for edits.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/boston-kebab/kiosk/internal/menu"
)

func main() {
	in := flag.String("in", "", "Catalog JSON file to validate")
	export := flag.String("export", "", "Write the built-in catalog to this path")
	flag.Parse()

	switch {
	case *export != "":
		if err := exportDefault(*export); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("built-in catalog written to %s\n", *export)

	case *in != "":
		if err := validate(*in); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *in, err)
			os.Exit(1)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func exportDefault(path string) error {
	return os.WriteFile(path, menu.DefaultCatalogJSON(), 0o644)
}

func validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	catalog, err := menu.Parse(data)
	if err != nil {
		return err
	}

	items := catalog.Items()
	fmt.Printf("ok: %d categories, %d items\n", len(catalog.Categories()), len(items))
	for _, item := range items {
		note := ""
		if !item.Available {
			note = "  (unavailable)"
		}
		fmt.Printf("  %-24s $%s%s\n", item.ID, item.Price.StringFixed(2), note)
	}
	return nil
}
