package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xtbe/arcbp-editor/internal/client/services"
	"github.com/xtbe/arcbp-editor/internal/client/view"
	"github.com/xtbe/arcbp-editor/internal/models"
)

var errUsage = errors.New("usage")

// usage prints the expected syntax and returns an errUsage error.
func (a *App) usage(syntax string) error {
	a.println("Usage:", syntax)
	return fmt.Errorf("%w: %s", errUsage, syntax)
}

// intArg parses the single integer argument of a command.
func (a *App) intArg(args []string, syntax string) (int, error) {
	if len(args) != 1 {
		return 0, a.usage(syntax)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, a.usage(syntax)
	}
	return n, nil
}

// List prints the current page. Rows are numbered by collection position,
// which is what select takes; the selected row is starred.
func (a *App) List(_ context.Context, _ []string) error {
	st := a.service.State()
	p := st.Visible()

	a.printf("Page %d/%d, %d of %d blueprints", p.Number, p.Total, p.Count, len(st.Blueprints))
	if st.Query != "" {
		a.printf(", search %q", st.Query)
	}
	if st.Availability != view.AvailabilityAll {
		a.printf(", %s only", st.Availability)
	}
	a.println()

	if p.Count == 0 {
		a.println("  (no blueprints)")
		return nil
	}

	for _, idx := range p.Indices {
		bp := st.Blueprints[idx]
		marker := " "
		if idx == st.Selected {
			marker = "*"
		}
		a.printf("%s%4d. %-32s %-20s %s\n", marker, idx+1, displayName(bp), bp.Workshop, availability(bp))
	}
	return nil
}

func (a *App) Page(ctx context.Context, args []string) error {
	n, err := a.intArg(args, "page <n>")
	if err != nil {
		return err
	}
	a.service.SetPage(n)
	return a.List(ctx, nil)
}

func (a *App) Next(ctx context.Context, _ []string) error {
	a.service.SetPage(a.service.Visible().Number + 1)
	return a.List(ctx, nil)
}

func (a *App) Prev(ctx context.Context, _ []string) error {
	a.service.SetPage(a.service.Visible().Number - 1)
	return a.List(ctx, nil)
}

func (a *App) PageSize(ctx context.Context, args []string) error {
	n, err := a.intArg(args, "pagesize <n>")
	if err != nil {
		return err
	}
	if n < 1 {
		return a.usage("pagesize <n> (n >= 1)")
	}
	a.service.SetPageSize(n)
	return a.List(ctx, nil)
}

// Search filters by a case-insensitive substring of name or workshop. No
// arguments clears the search.
func (a *App) Search(ctx context.Context, args []string) error {
	a.service.SetQuery(strings.Join(args, " "))
	return a.List(ctx, nil)
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("filter all|available|unavailable")
	}
	av, err := view.ParseAvailability(args[0])
	if err != nil {
		a.println(err)
		return err
	}
	a.service.SetAvailability(av)
	return a.List(ctx, nil)
}

// Select takes a list number, or "none" to clear the selection.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "none") {
		return a.service.Select(-1)
	}
	n, err := a.intArg(args, "select <n> | select none")
	if err != nil {
		return err
	}
	if err := a.service.Select(n - 1); err != nil {
		a.printf("No blueprint #%d.\n", n)
		return err
	}
	return a.Show(ctx, nil)
}

func (a *App) Show(_ context.Context, _ []string) error {
	bp, ok := a.selected()
	if !ok {
		return services.ErrNotFound
	}

	a.printf("%s  (id %s)\n", displayName(bp), bp.ID)
	a.printf("  workshop:        %s\n", bp.Workshop)
	a.printf("  image:           %s\n", bp.Image)
	a.printf("  available:       %t\n", bp.Available)
	a.printf("  loot:            %t\n", bp.Loot)
	a.printf("  harvester_event: %t\n", bp.HarvesterEvent)
	a.printf("  quest_reward:    %t\n", bp.QuestReward)
	a.printf("  trials_reward:   %t\n", bp.TrialsReward)
	a.printRecipe(bp)
	return nil
}

func (a *App) printRecipe(bp models.Blueprint) {
	if len(bp.CraftingRecipe) == 0 {
		a.println("  recipe: (empty)")
		return
	}
	a.println("  recipe:")
	for i, it := range bp.CraftingRecipe {
		item := it.Item
		if item == "" {
			item = "(no item)"
		}
		a.printf("    %d. %s x%d\n", i+1, item, it.Quantity)
	}
}

// selected returns the selected blueprint or tells the user to pick one.
func (a *App) selected() (models.Blueprint, bool) {
	bp, ok := a.service.State().SelectedBlueprint()
	if !ok {
		a.println("Nothing selected. Use 'select <n>' first.")
	}
	return bp, ok
}

func displayName(bp models.Blueprint) string {
	if bp.Name == "" {
		return "(unnamed)"
	}
	return bp.Name
}

func availability(bp models.Blueprint) string {
	if bp.Available {
		return "available"
	}
	return "unavailable"
}
