package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/xtbe/arcbp-editor/internal/client/backup"
	"github.com/xtbe/arcbp-editor/internal/client/client"
	"github.com/xtbe/arcbp-editor/internal/client/config"
	"github.com/xtbe/arcbp-editor/internal/client/services"
	"github.com/xtbe/arcbp-editor/internal/logging"
)

type Mode string

const (
	ModeOffline     Mode = "offline"
	ModeOnline      Mode = "online"
	ModeUnreachable Mode = "unreachable"
)

// pingTimeout bounds a single health probe.
const pingTimeout = 3 * time.Second

// pinger reports whether the record store is serving.
// *client.HealthClient satisfies it.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	service services.BlueprintService
	health  pinger
	sink    backup.Sink
	logger  logging.Logger

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	closers     []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp builds the store client, the health client and the backup sink
// described by c. Logs go to stderr so they do not mix with REPL output.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, slog.LevelWarn)

	store := client.NewHTTPClient(c.StoreURL, c.Collection,
		client.WithBatchSize(c.BatchSize),
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithLogger(logger),
	)

	sink, err := backup.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("backup sink: %w", err)
	}

	var (
		health  pinger
		closers []func() error
	)
	if c.HealthAddr != "" {
		hc, err := client.NewHealthClient(c.HealthAddr)
		if err != nil {
			return nil, fmt.Errorf("health client: %w", err)
		}
		health = hc
		closers = append(closers, hc.Close)
	}

	svc := services.NewBlueprintService(store, logger)
	a := newApp(c, svc, health, sink, logger, os.Stdin, os.Stdout)
	a.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	a.closers = closers
	return a, nil
}

func newApp(c *config.Config, svc services.BlueprintService, health pinger, sink backup.Sink,
	logger logging.Logger, in io.Reader, out io.Writer) *App {

	a := &App{
		config:  c,
		service: svc,
		health:  health,
		sink:    sink,
		logger:  logger.With("module", "cli"),
		reader:  bufio.NewReader(in),
		out:     &syncWriter{w: out},
		mode:    ModeOnline,
	}
	if c.PageSize > 0 {
		svc.SetPageSize(c.PageSize)
	}
	svc.OnStatus(a.printStatus)
	return a
}

// Run loads the collection, starts the online watcher and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("Welcome to the blueprint editor (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_ = a.service.Bootstrap(ctx)

	if a.health != nil && a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	var statusFn func() string
	if a.interactive {
		statusFn = a.getStatus
	}
	runREPL(ctx, a, statusFn, a.reader, a.out)

	a.service.Wait()
}

// Close releases network resources.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// getStatus is the prompt label: the watcher's view, overridden by an
// unreachable store as seen by the last fetch.
func (a *App) getStatus() string {
	if a.service.State().Mode == services.ModeUnreachable {
		return string(ModeUnreachable)
	}
	return string(a.Mode())
}

// StartOnlineStatusWatcher pings the store every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// checkOnline runs one probe. A store that answers again after the last
// fetch found it unreachable triggers a fresh load.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.health.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)

	if a.service.State().Mode == services.ModeUnreachable {
		a.logger.Info(ctx, "record store is back, reloading")
		_ = a.service.Bootstrap(ctx)
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printStatus(st services.Status) {
	a.printf("[%s] %s\n", st.Kind, st.Text)
}

// syncWriter serializes writes from the REPL and from background saves.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
