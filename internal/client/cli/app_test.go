package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtbe/arcbp-editor/internal/client/backup"
	"github.com/xtbe/arcbp-editor/internal/client/client"
	"github.com/xtbe/arcbp-editor/internal/client/config"
	"github.com/xtbe/arcbp-editor/internal/client/sample"
	"github.com/xtbe/arcbp-editor/internal/client/services"
	"github.com/xtbe/arcbp-editor/internal/logging"
	"github.com/xtbe/arcbp-editor/internal/models"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

type testApp struct {
	*App
	store *memStore
	out   *lockedBuffer
	dir   string
}

// newTestApp wires an App to an in-memory store and a file sink in a temp
// dir, loads the collection and clears the output.
func newTestApp(t *testing.T, store *memStore, input string) *testApp {
	t.Helper()

	dir := t.TempDir()
	sink, err := backup.NewFileSink(dir)
	require.NoError(t, err)

	out := &lockedBuffer{}
	svc := services.NewBlueprintService(store, logging.Discard())
	a := newApp(&config.Config{PageSize: 10}, svc, nil, sink, logging.Discard(), strings.NewReader(input), out)

	require.NoError(t, svc.Bootstrap(context.Background()))
	out.Reset()

	return &testApp{App: a, store: store, out: out, dir: sink.Dir()}
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Blueprint %02d", i+1)
	}
	return out
}

func TestApp_ListMarksSelection(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha", "Beta", "Gamma"), "")
	ctx := context.Background()

	require.NoError(t, ta.Select(ctx, []string{"2"}))
	ta.out.Reset()
	require.NoError(t, ta.List(ctx, nil))

	out := ta.out.String()
	assert.Contains(t, out, "Page 1/1, 3 of 3 blueprints")
	assert.Contains(t, out, "    1. Alpha")
	assert.Contains(t, out, "*   2. Beta")
	assert.Contains(t, out, "unavailable")
}

func TestApp_Paging(t *testing.T) {
	ta := newTestApp(t, newMemStore(names(25)...), "")
	ctx := context.Background()

	require.NoError(t, ta.Next(ctx, nil))
	assert.Contains(t, ta.out.String(), "Page 2/3")
	assert.Contains(t, ta.out.String(), "  11. Blueprint 11")

	ta.out.Reset()
	require.NoError(t, ta.Page(ctx, []string{"9"}))
	assert.Contains(t, ta.out.String(), "Page 3/3")

	ta.out.Reset()
	require.NoError(t, ta.Prev(ctx, nil))
	assert.Contains(t, ta.out.String(), "Page 2/3")

	ta.out.Reset()
	require.NoError(t, ta.PageSize(ctx, []string{"5"}))
	assert.Contains(t, ta.out.String(), "Page 1/5")

	require.ErrorIs(t, ta.PageSize(ctx, []string{"0"}), errUsage)
	require.ErrorIs(t, ta.Page(ctx, []string{"x"}), errUsage)
	require.ErrorIs(t, ta.Page(ctx, nil), errUsage)
}

func TestApp_SearchAndFilter(t *testing.T) {
	ta := newTestApp(t, newMemStore("Heavy Gun Parts", "Light Gun Parts", "Medkit"), "")
	ctx := context.Background()

	require.NoError(t, ta.Search(ctx, []string{"gun"}))
	out := ta.out.String()
	assert.Contains(t, out, `2 of 3 blueprints, search "gun"`)
	assert.NotContains(t, out, "Medkit")

	ta.out.Reset()
	require.NoError(t, ta.Filter(ctx, []string{"available"}))
	out = ta.out.String()
	assert.Contains(t, out, "available only")
	assert.Contains(t, out, "Heavy Gun Parts")
	assert.NotContains(t, out, "Light Gun Parts")

	require.Error(t, ta.Filter(ctx, []string{"sometimes"}))
	require.ErrorIs(t, ta.Filter(ctx, nil), errUsage)

	ta.out.Reset()
	require.NoError(t, ta.Search(ctx, nil))
	require.NoError(t, ta.Filter(ctx, []string{"all"}))
	assert.Contains(t, ta.out.String(), "3 of 3 blueprints")
}

func TestApp_SelectAndShow(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha", "Beta"), "")
	ctx := context.Background()

	require.ErrorIs(t, ta.Show(ctx, nil), services.ErrNotFound)
	assert.Contains(t, ta.out.String(), "Nothing selected")

	ta.out.Reset()
	require.NoError(t, ta.Select(ctx, []string{"2"}))
	out := ta.out.String()
	assert.Contains(t, out, "Beta  (id id002)")
	assert.Contains(t, out, "workshop:        Workbench")
	assert.Contains(t, out, "1. Metal Parts x2")

	require.ErrorIs(t, ta.Select(ctx, []string{"9"}), services.ErrOutOfRange)
	assert.Contains(t, ta.out.String(), "No blueprint #9.")
	require.ErrorIs(t, ta.Select(ctx, []string{"two"}), errUsage)

	require.NoError(t, ta.Select(ctx, []string{"none"}))
	assert.Equal(t, -1, ta.service.State().Selected)
}

func TestApp_Set(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()

	require.ErrorIs(t, ta.Set(ctx, []string{"name", "x"}), services.ErrNotFound)
	require.NoError(t, ta.Select(ctx, []string{"1"}))

	require.NoError(t, ta.Set(ctx, []string{"name", "Heavy", "Gun", "Parts"}))
	require.NoError(t, ta.Set(ctx, []string{"workshop", "Gunsmith", "2"}))
	require.NoError(t, ta.Set(ctx, []string{"available", "no"}))
	require.NoError(t, ta.Set(ctx, []string{"loot", "true"}))
	require.NoError(t, ta.Set(ctx, []string{"quest_reward", "1"}))
	ta.service.Wait()

	got := ta.store.snapshot()[0]
	assert.Equal(t, "Heavy Gun Parts", got.Name)
	assert.Equal(t, "Gunsmith 2", got.Workshop)
	assert.False(t, got.Available)
	assert.True(t, got.Loot)
	assert.True(t, got.QuestReward)

	require.ErrorContains(t, ta.Set(ctx, []string{"colour", "red"}), "unknown field")
	require.ErrorContains(t, ta.Set(ctx, []string{"loot", "maybe"}), "expected true or false")
	require.ErrorIs(t, ta.Set(ctx, nil), errUsage)
}

func TestApp_SetImageFile(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()
	require.NoError(t, ta.Select(ctx, []string{"1"}))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	img := filepath.Join(ta.dir, "icon file.png")
	require.NoError(t, os.WriteFile(img, png, 0o600))

	require.NoError(t, ta.Set(ctx, []string{"image", "file", ta.dir + "/icon", "file.png"}))
	ta.service.Wait()

	got := ta.store.snapshot()[0].Image
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==", got)
	assert.Contains(t, ta.out.String(), "image = image/png file")
}

func TestApp_SetImageFileRejectsNonImage(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()
	require.NoError(t, ta.Select(ctx, []string{"1"}))

	txt := filepath.Join(ta.dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just some notes\n"), 0o600))

	err := ta.Set(ctx, []string{"image", "file", txt})
	require.ErrorIs(t, err, errNotImage)
	ta.service.Wait()

	assert.Empty(t, ta.store.snapshot()[0].Image)
	st := ta.service.State().Status
	assert.Equal(t, services.StatusWarn, st.Kind)
	assert.Contains(t, ta.out.String(), "[warn] Please choose an image file.")

	require.Error(t, ta.Set(ctx, []string{"image", "file", filepath.Join(ta.dir, "missing.png")}))
}

func TestBuildPatch(t *testing.T) {
	tests := []struct {
		field, value string
		want         models.BlueprintPatch
	}{
		{"name", "A", models.BlueprintPatch{Name: models.Ptr("A")}},
		{"image", "", models.BlueprintPatch{Image: models.Ptr("")}},
		{"harvester_event", "on", models.BlueprintPatch{HarvesterEvent: models.Ptr(true)}},
		{"trials_reward", "false", models.BlueprintPatch{TrialsReward: models.Ptr(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := buildPatch(tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApp_Recipe(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()

	require.NoError(t, ta.Select(ctx, []string{"1"}))

	require.NoError(t, ta.Recipe(ctx, []string{"add"}))
	ta.service.Wait()
	require.NoError(t, ta.Recipe(ctx, []string{"set", "2", "Plastic", "Parts", "4"}))
	ta.service.Wait()
	require.NoError(t, ta.Recipe(ctx, []string{"rm", "1"}))
	ta.service.Wait()

	assert.Equal(t, []models.RecipeItem{{Item: "Plastic Parts", Quantity: 4}}, ta.store.snapshot()[0].CraftingRecipe)
	assert.Contains(t, ta.out.String(), "1. Plastic Parts x4")

	require.ErrorIs(t, ta.Recipe(ctx, []string{"rm", "5"}), services.ErrOutOfRange)
	assert.Contains(t, ta.out.String(), "No such recipe line.")

	require.ErrorIs(t, ta.Recipe(ctx, []string{"set", "1", "x"}), errUsage)
	require.ErrorIs(t, ta.Recipe(ctx, []string{"set", "a", "x", "1"}), errUsage)
	require.ErrorIs(t, ta.Recipe(ctx, []string{"rm"}), errUsage)
	require.ErrorIs(t, ta.Recipe(ctx, []string{"swap"}), errUsage)
	require.ErrorIs(t, ta.Recipe(ctx, nil), errUsage)
}

func TestApp_DeleteAsksForConfirmation(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha", "Beta"), "n\ny\n")
	ctx := context.Background()

	require.NoError(t, ta.Select(ctx, []string{"1"}))

	require.NoError(t, ta.Delete(ctx, nil))
	assert.Equal(t, []string{"Alpha", "Beta"}, ta.store.names())
	assert.Contains(t, ta.out.String(), `Delete "Alpha"? [y/N]`)
	assert.Contains(t, ta.out.String(), "Cancelled.")

	require.NoError(t, ta.Delete(ctx, nil))
	assert.Equal(t, []string{"Beta"}, ta.store.names())
	assert.Contains(t, ta.out.String(), "[ok] Deleted.")
}

func TestApp_DeleteAtEndOfInputDeclines(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()

	require.NoError(t, ta.Select(ctx, []string{"1"}))
	require.NoError(t, ta.Delete(ctx, nil))
	assert.Equal(t, []string{"Alpha"}, ta.store.names())
}

func TestApp_NewAndDuplicate(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ctx := context.Background()

	require.ErrorIs(t, ta.Duplicate(ctx, nil), services.ErrNotFound)

	require.NoError(t, ta.Select(ctx, []string{"1"}))
	require.NoError(t, ta.Duplicate(ctx, nil))
	require.NoError(t, ta.New(ctx, nil))

	assert.Equal(t, []string{"Alpha", "Alpha (Copy)", "New Blueprint"}, ta.store.names())
	assert.Equal(t, 2, ta.service.State().Selected)
	assert.Contains(t, ta.out.String(), "[ok] Duplicated.")
	assert.Contains(t, ta.out.String(), "[ok] Added a new blueprint.")
}

func TestApp_ExportImportRoundTrip(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha", "Beta", "Gamma"), "y\n")
	ctx := context.Background()

	require.NoError(t, ta.Export(ctx, []string{"snap"}))
	assert.Contains(t, ta.out.String(), "[ok] Exported 3 blueprints to "+filepath.Join(ta.dir, "snap.json"))

	require.NoError(t, ta.Select(ctx, []string{"1"}))
	require.NoError(t, ta.Set(ctx, []string{"name", "Changed"}))
	ta.service.Wait()

	require.NoError(t, ta.Import(ctx, []string{"snap"}))
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, ta.store.names())
	assert.Contains(t, ta.out.String(), "[ok] Loaded 3 blueprints from snap.")
}

func TestApp_ExportDefaultName(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")

	require.NoError(t, ta.Export(context.Background(), nil))

	entries, err := os.ReadDir(ta.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "blueprints-"))

	require.ErrorIs(t, ta.Export(context.Background(), []string{"a", "b"}), errUsage)
}

func TestApp_ImportMissingBackup(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")

	err := ta.Import(context.Background(), []string{"nope"})
	require.ErrorIs(t, err, backup.ErrNotFound)
	assert.Contains(t, ta.out.String(), "Could not read backup")
	require.ErrorIs(t, ta.Import(context.Background(), nil), errUsage)
}

func TestApp_Paste(t *testing.T) {
	input := `{"blueprints": [` + "\n" + `{"name": "Pasted", "available": "yes"}` + "\n" + `]}` + "\n\ny\n"
	ta := newTestApp(t, newMemStore("Alpha", "Beta"), input)

	require.NoError(t, ta.Paste(context.Background(), nil))

	got := ta.store.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "Pasted", got[0].Name)
	assert.True(t, got[0].Available)
	assert.Contains(t, ta.out.String(), "[ok] Loaded 1 blueprints from pasted JSON.")
}

func TestApp_PasteInvalidJSON(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "[1, 2]\n\ny\n")

	require.Error(t, ta.Paste(context.Background(), nil))
	assert.Equal(t, []string{"Alpha"}, ta.store.names())
	assert.Contains(t, ta.out.String(), "[err] Could not load JSON")
}

func TestApp_PasteNothing(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "\n")

	require.NoError(t, ta.Paste(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "Nothing pasted.")
}

func TestApp_JSON(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")

	require.NoError(t, ta.JSON(context.Background(), nil))
	out := ta.out.String()
	assert.Contains(t, out, `"blueprints"`)
	assert.Contains(t, out, `"Alpha"`)
	assert.NotContains(t, out, `"id"`)
}

func TestApp_Reset(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "y\n")

	require.NoError(t, ta.Reset(context.Background(), nil))
	assert.Len(t, ta.store.snapshot(), len(sample.Collection().Blueprints))
	assert.Contains(t, ta.out.String(), "[ok] Reset to sample.")
}

func TestApp_ReloadWhenUnreachable(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	ta.store.setListErr(fmt.Errorf("%w: connection refused", client.ErrUnavailable))

	require.Error(t, ta.Reload(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "[err] Record store unreachable. Use reload to retry.")
	assert.Equal(t, "unreachable", ta.getStatus())
}

func TestApp_CheckOnline(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	p := &fakePinger{}
	ta.health = p
	ctx := context.Background()

	p.set(errors.New("down"))
	ta.checkOnline(ctx)
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.Equal(t, "offline", ta.getStatus())

	ta.store.setListErr(client.ErrUnavailable)
	_ = ta.Reload(ctx, nil)
	ta.store.setListErr(nil)
	lists := ta.store.listCalls()

	p.set(nil)
	ta.checkOnline(ctx)
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.Equal(t, lists+1, ta.store.listCalls())
	assert.Equal(t, services.ModeReady, ta.service.State().Mode)
	assert.Equal(t, "online", ta.getStatus())

	ta.checkOnline(ctx)
	assert.Equal(t, lists+1, ta.store.listCalls())
}

func TestApp_StartOnlineStatusWatcher(t *testing.T) {
	ta := newTestApp(t, newMemStore("Alpha"), "")
	p := &fakePinger{err: errors.New("down")}
	ta.health = p

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ta.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ta.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)
	p.set(nil)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestApp_Run(t *testing.T) {
	store := newMemStore("Alpha", "Beta")
	sink, err := backup.NewFileSink(t.TempDir())
	require.NoError(t, err)
	out := &lockedBuffer{}
	svc := services.NewBlueprintService(store, logging.Discard())

	a := newApp(&config.Config{PageSize: 10, OnlineCheckInterval: time.Hour}, svc, &fakePinger{}, sink,
		logging.Discard(), strings.NewReader("help\nlist\nselect 2\nset name Renamed\nbogus\nexit\n"), out)

	closed := false
	a.closers = []func() error{func() error { closed = true; return nil }}

	a.Run(context.Background())

	assert.True(t, closed)
	assert.Equal(t, []string{"Alpha", "Renamed"}, store.names())
	got := out.String()
	assert.Contains(t, got, "Welcome to the blueprint editor")
	assert.Contains(t, got, "[info] Loaded 2 blueprints from the record store.")
	assert.Contains(t, got, "Page 1/1, 2 of 2 blueprints")
	// The loop's own lines share the App writer with the commands.
	assert.Contains(t, got, "Available commands:")
	assert.Contains(t, got, "Unknown command: bogus")
	assert.Contains(t, got, "Bye!")
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ExportDir = t.TempDir()

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, a.health)
	assert.Len(t, a.closers, 1)
	assert.Equal(t, ModeOnline, a.Mode())
	a.Close()
	assert.Empty(t, a.closers)

	cfg.HealthAddr = ""
	a, err = NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a.health)
}

func TestNewApp_BadExportDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ExportDir = f

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
}
