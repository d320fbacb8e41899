// Package cli provides the interactive supportdesk command-line client.
//
// It wires configuration, the credential store, the authenticated API client
// and a REPL. Typical flow: log in (or reuse stored credentials), start a
// background reachability watcher and execute user commands. Expired access
// credentials are refreshed transparently; when the refresh itself is
// rejected the CLI reports the ended session and asks for a new login.
//
// Key features:
//   - Register / Login / Logout / Whoami
//   - Raw API calls: get, delete, post, put, patch
//   - burst: N concurrent calls sharing one refresh
//   - status: session, refresh and connectivity state
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
