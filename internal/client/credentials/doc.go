// Package credentials holds the client's access/refresh credential pair.
//
// A Store is pure storage: Get, Set and Clear, with no network behaviour.
// Set always replaces both halves of the pair in one write, so a reader
// never sees the access credential of one pair next to the refresh
// credential of another.
//
// Two implementations are provided:
//
//   - MemoryStore keeps the pair in process memory.
//   - SQLiteStore persists the pair in a single-row table of a local SQLite
//     database, so a session survives restarts of the client.
package credentials
