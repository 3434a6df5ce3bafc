package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/xtbe/arcbp-editor/internal/client/services"
	"github.com/xtbe/arcbp-editor/internal/models"
)

const setSyntax = "set <field> <value>"

func (a *App) New(ctx context.Context, _ []string) error {
	return a.service.New(ctx)
}

// Set edits one field of the selected blueprint. Text fields take the rest
// of the line, so "set name Heavy Gun Parts" works without quotes.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage(setSyntax)
	}
	bp, ok := a.selected()
	if !ok {
		return services.ErrNotFound
	}

	field := strings.ToLower(args[0])
	if field == "image" && len(args) > 2 && strings.EqualFold(args[1], "file") {
		return a.setImageFile(ctx, bp.ID, strings.Join(args[2:], " "))
	}
	value := strings.Join(args[1:], " ")

	patch, err := buildPatch(field, value)
	if err != nil {
		a.println(err)
		return err
	}
	if err := a.service.Patch(ctx, bp.ID, patch); err != nil {
		return err
	}
	a.printf("%s = %s\n", field, value)
	return nil
}

var errNotImage = errors.New("not an image file")

// setImageFile stores a local image inline as a data URI.
func (a *App) setImageFile(ctx context.Context, id, path string) error {
	uri, mime, err := imageDataURI(path)
	if errors.Is(err, errNotImage) {
		a.service.Report(services.StatusWarn, "Please choose an image file.")
		return err
	}
	if err != nil {
		a.println("Could not read image:", err)
		return err
	}
	if err := a.service.Patch(ctx, id, models.BlueprintPatch{Image: &uri}); err != nil {
		return err
	}
	a.printf("image = %s file, %d bytes inline\n", mime, len(uri))
	return nil
}

// imageDataURI reads path and encodes it as a data URI. The media type is
// sniffed from the content and must be image/*.
func imageDataURI(path string) (uri, mime string, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	mime, _, _ = strings.Cut(http.DetectContentType(b), ";")
	if !strings.HasPrefix(mime, "image/") {
		return "", mime, fmt.Errorf("%w: %s is %s", errNotImage, path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), mime, nil
}

func buildPatch(field, value string) (models.BlueprintPatch, error) {
	var p models.BlueprintPatch
	switch field {
	case "name":
		p.Name = &value
		return p, nil
	case "workshop":
		p.Workshop = &value
		return p, nil
	case "image":
		p.Image = &value
		return p, nil
	}

	var flag **bool
	switch field {
	case "available":
		flag = &p.Available
	case "loot":
		flag = &p.Loot
	case "harvester_event":
		flag = &p.HarvesterEvent
	case "quest_reward":
		flag = &p.QuestReward
	case "trials_reward":
		flag = &p.TrialsReward
	default:
		return p, fmt.Errorf("unknown field %q", field)
	}

	b, err := parseBool(value)
	if err != nil {
		return p, err
	}
	*flag = &b
	return p, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected true or false, got %q", s)
	}
	return b, nil
}

// Recipe edits recipe lines of the selected blueprint. Line numbers are
// 1-based as shown by show.
func (a *App) Recipe(ctx context.Context, args []string) error {
	const syntax = "recipe add | recipe set <i> <item> <qty> | recipe rm <i>"
	if len(args) == 0 {
		return a.usage(syntax)
	}
	bp, ok := a.selected()
	if !ok {
		return services.ErrNotFound
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "add":
		err = a.service.AddRecipeItem(ctx, bp.ID)

	case "set":
		if len(args) < 4 {
			return a.usage(syntax)
		}
		line, lerr := strconv.Atoi(args[1])
		qty, qerr := strconv.Atoi(args[len(args)-1])
		if lerr != nil || qerr != nil {
			return a.usage(syntax)
		}
		item := strings.Join(args[2:len(args)-1], " ")
		err = a.service.UpdateRecipeItem(ctx, bp.ID, line-1, services.RecipeEdit{Item: &item, Quantity: &qty})

	case "rm", "remove":
		if len(args) != 2 {
			return a.usage(syntax)
		}
		line, lerr := strconv.Atoi(args[1])
		if lerr != nil {
			return a.usage(syntax)
		}
		err = a.service.RemoveRecipeItem(ctx, bp.ID, line-1)

	default:
		return a.usage(syntax)
	}

	if err != nil {
		if errors.Is(err, services.ErrOutOfRange) {
			a.println("No such recipe line.")
		}
		return err
	}

	if bp, ok := a.service.State().SelectedBlueprint(); ok {
		a.printRecipe(bp)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, _ []string) error {
	bp, ok := a.selected()
	if !ok {
		return services.ErrNotFound
	}
	if !a.confirm(fmt.Sprintf("Delete %q?", displayName(bp))) {
		return nil
	}
	return a.service.Delete(ctx, bp.ID)
}

func (a *App) Duplicate(ctx context.Context, _ []string) error {
	bp, ok := a.selected()
	if !ok {
		return services.ErrNotFound
	}
	return a.service.Duplicate(ctx, bp.ID)
}

// confirm asks a yes/no question; anything but yes, including end of
// input, declines.
func (a *App) confirm(question string) bool {
	answer, err := GetSimpleText(a.reader, question+" [y/N]", a.out)
	if err == nil {
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true
		}
	}
	a.println("Cancelled.")
	return false
}
