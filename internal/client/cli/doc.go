// Package cli provides the interactive blueprint editor.
//
// It wires configuration, the record store client, the backup sink and an
// interactive REPL. A background watcher pings the store's health endpoint
// and switches the prompt between online and offline; when the store comes
// back after being unreachable the collection is loaded again.
//
// Key features:
//   - Browse: list, page, search, filter
//   - Edit the selected blueprint: set, recipe add/set/rm
//   - Create, duplicate and delete blueprints
//   - Import/export the whole collection through files or S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
