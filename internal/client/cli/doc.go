// Package cli provides the interactive blog command-line client.
//
// It wires configuration, the local SQLite store, the API client and the
// view services into a REPL. Readers browse the feed, open posts, like and
// comment; administrators manage articles, categories and notifications.
//
// Background work started by App.Run:
//   - an online/offline watcher probing /health (StartOnlineStatusWatcher),
//   - a storage watcher that reports writes made by other processes, which
//     keeps the unread badge in the prompt current.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
