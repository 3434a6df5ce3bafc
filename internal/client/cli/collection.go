package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/xtbe/arcbp-editor/internal/client/backup"
	"github.com/xtbe/arcbp-editor/internal/client/services"
)

// Import replaces the whole collection with a stored backup.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("import <name>")
	}

	data, err := a.sink.Load(ctx, args[0])
	if err != nil {
		a.printf("Could not read backup: %v\n", err)
		return err
	}
	if !a.confirm(fmt.Sprintf("Replace all %d blueprints in the store with %s?", a.count(), args[0])) {
		return nil
	}
	return a.service.Import(ctx, data, args[0])
}

// Paste replaces the whole collection with JSON typed or pasted into the
// terminal.
func (a *App) Paste(ctx context.Context, _ []string) error {
	text, err := GetMultiline(a.reader, `Paste a {"blueprints": [...]} document`, a.out)
	if err != nil {
		return err
	}
	if text == "" {
		a.println("Nothing pasted.")
		return nil
	}
	if !a.confirm(fmt.Sprintf("Replace all %d blueprints in the store with the pasted JSON?", a.count())) {
		return nil
	}
	return a.service.Import(ctx, []byte(text), "pasted JSON")
}

// Export saves the collection to the backup sink under name, or under a
// generated name.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return a.usage("export [name]")
	}
	name := backup.DefaultName(time.Now())
	if len(args) == 1 {
		name = args[0]
	}

	data, err := a.service.Export()
	if err != nil {
		a.printf("Export failed: %v\n", err)
		return err
	}

	loc, err := a.sink.Save(ctx, name, data)
	if err != nil {
		a.service.Report(services.StatusErr, fmt.Sprintf("Export failed: %v", err))
		return err
	}
	a.service.Report(services.StatusOK, fmt.Sprintf("Exported %d blueprints to %s.", a.count(), loc))
	return nil
}

// JSON prints the export document.
func (a *App) JSON(_ context.Context, _ []string) error {
	data, err := a.service.Export()
	if err != nil {
		a.printf("Export failed: %v\n", err)
		return err
	}
	a.println(string(data))
	return nil
}

func (a *App) Reset(ctx context.Context, _ []string) error {
	if !a.confirm("Replace all blueprints in the store with the sample data?") {
		return nil
	}
	return a.service.Reset(ctx)
}

func (a *App) Reload(ctx context.Context, _ []string) error {
	return a.service.Bootstrap(ctx)
}

func (a *App) count() int {
	return len(a.service.State().Blueprints)
}
