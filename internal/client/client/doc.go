// Package client is the authenticated API client of supportdesk.
//
// # Overview
//
// Client combines a credential store, a request dispatcher and a refresh
// coordinator behind verb methods (Get, Post, Put, Patch, Delete, Send).
// Each call:
//
//  1. reads the current credential pair (it may be empty for anonymous calls);
//  2. dispatches the request with the access credential attached;
//  3. returns the transformed Outcome unless the response is a 401;
//  4. on a first 401, joins or starts the single in-flight refresh and replays
//     the request once with the new access credential;
//  5. on a 401 of a replayed request, fails with AuthenticationFailure.
//
// When the refresh itself fails, the store is cleared, the session-ended
// handler fires once and every waiting call returns RefreshFailure.
//
// # Error Handling
//
// Calls return outcome.Outcome values and never a bare error. Switch on
// Failure().Kind, or use Get() and errors.Is with the outcome sentinels
// (outcome.ErrRefresh, outcome.ErrTransport, ...).
//
// # Concurrency
//
// A Client is safe for concurrent use. Construct one per session and pass it
// by reference; independent sessions need independent clients (and stores).
package client
