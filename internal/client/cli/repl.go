package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const helpText = `Available commands:
  (l)ist                         show the current page
  page <n> | next | prev         move between pages
  pagesize <n>                   set the page size
  search [text]                  filter by name or workshop
  filter all|available|unavailable
  select <n> | select none       select a blueprint by its list number
  show                           show the selected blueprint
  new | dup | delete             create, duplicate or delete
  set <field> <value>            name, workshop, image, available, loot,
                                 harvester_event, quest_reward, trials_reward
  set image file <path>          store a local image inline
  recipe add                     append an empty recipe line
  recipe set <i> <item> <qty>    change recipe line i
  recipe rm <i>                  remove recipe line i
  import <name> | paste          replace the collection from a backup or JSON
  export [name] | json           save or print the collection
  reset                          replace the collection with the sample data
  reload                         load the collection from the store again
  exit | quit                    leave the program`

// execIface defines the command surface the REPL dispatches to. The real App
// type satisfies this interface; tests can provide a lightweight stub.
// Arguments are the whitespace-separated words after the command.
type execIface interface {
	List(ctx context.Context, args []string) error
	Page(ctx context.Context, args []string) error
	Next(ctx context.Context, args []string) error
	Prev(ctx context.Context, args []string) error
	PageSize(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Recipe(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Duplicate(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Paste(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	JSON(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Reload(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the editor.
//
// It reads a line from reader, parses the first word as the command, and
// dispatches to methods on a. Unknown commands are reported back to the
// user. The loop exits on EOF, on context cancellation, or when the user
// types "exit" or "quit".
//
// When statusFn is non-nil a prompt showing its result is printed before
// each line; piped input runs without prompts. The loop's own output goes
// to out, which should be the writer the commands print through.
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		if statusFn != nil {
			fmt.Fprintf(out, "arcbp (%s)> ", statusFn())
		}
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprintln(out, helpText)
		case "l", "list":
			_ = a.List(ctx, args)
		case "page":
			_ = a.Page(ctx, args)
		case "next", "n":
			_ = a.Next(ctx, args)
		case "prev", "p":
			_ = a.Prev(ctx, args)
		case "pagesize":
			_ = a.PageSize(ctx, args)
		case "search":
			_ = a.Search(ctx, args)
		case "filter":
			_ = a.Filter(ctx, args)
		case "select", "s":
			_ = a.Select(ctx, args)
		case "show":
			_ = a.Show(ctx, args)
		case "new":
			_ = a.New(ctx, args)
		case "set":
			_ = a.Set(ctx, args)
		case "recipe":
			_ = a.Recipe(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "dup", "duplicate":
			_ = a.Duplicate(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "paste":
			_ = a.Paste(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "json":
			_ = a.JSON(ctx, args)
		case "reset":
			_ = a.Reset(ctx, args)
		case "reload":
			_ = a.Reload(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
