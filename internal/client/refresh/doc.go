// Package refresh coordinates credential refreshes for the authenticated
// client.
//
// # States
//
// The Coordinator is Idle when no refresh ticket exists and Refreshing while
// one does. The first caller that reports an authentication failure while
// Idle becomes the owner: it opens a ticket and starts the single refresh
// call. Every caller arriving while Refreshing joins the ticket and waits for
// its resolution. When the refresh call returns, the ticket resolves:
//
//   - success: the new pair is stored and every waiter receives it;
//   - failure: the store is cleared, every waiter receives a RefreshFailure
//     and the session-ended hook fires once.
//
// Either way the ticket is dropped and the Coordinator is Idle again. For
// any number of concurrent failures against the same credential exactly one
// refresh call is issued.
//
// # Ownership and cancellation
//
// The refresh call runs on its own goroutine with its own timeout. A caller
// that gives up waiting (context cancelled) does not affect the ticket; the
// owner is only the caller that happened to open it.
package refresh
