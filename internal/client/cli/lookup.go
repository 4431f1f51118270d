package cli

import (
	"context"
	"fmt"
	"strings"
)

// lookupApp searches the storefront by name and prints matching app ids.
func (a *App) lookupApp(ctx context.Context) error {
	term, err := GetSimpleText(a.reader, "Game name to search for", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(term) == "" {
		fmt.Fprintln(a.out, "Nothing to search for.")
		return nil
	}

	items, err := a.store.Search(ctx, term)
	if err != nil {
		return fmt.Errorf("storefront search: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "No results for %q.\n", term)
		return nil
	}

	fmt.Fprintf(a.out, "%-10s %s\n", "AppID", "Name")
	for _, item := range items {
		fmt.Fprintf(a.out, "%-10d %s\n", item.ID, item.Name)
	}
	return nil
}
