// Package cli provides the interactive Balance Buddy terminal client.
//
// It wires configuration, the local cache, the hosted backend client and the
// services into a REPL. On start the saved session is resumed; when the
// backend cannot be reached the client runs in offline mode and shows the
// last cached dashboard. A background watcher pings the backend and flips
// the mode shown in the prompt.
//
// Key features:
//   - Register / Login / Logout
//   - Dashboard with meters and coins, live updates with "watch"
//   - Tasks: list, add, edit, delete, done, undo
//   - Avatar customizer and character creator sub-REPLs
//   - Journal
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
