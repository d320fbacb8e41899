// Package outcome defines the result type returned by every call of the
// authenticated client, and the failure taxonomy behind it.
//
// # Overview
//
// An Outcome is either a success carrying a value or a *Failure carrying a
// Kind, a human-readable Message and, when a response was received, the HTTP
// Status. Client calls never return a bare error and never panic past the
// client boundary; callers branch on Outcome.Ok or switch on Failure.Kind.
//
// # Kinds
//
//   - TransportFailure: no response reached the client (DNS, refused
//     connection, timeout, cancelled context).
//   - AuthenticationFailure: 401 that could not be recovered by one refresh.
//   - RefreshFailure: the refresh endpoint rejected the refresh credential or
//     was unreachable; the session has ended.
//   - ServerFailure: any other non-2xx status.
//   - ValidationFailure: the request was rejected before dispatch.
//
// Arbitrary JSON error bodies are normalized by FromResponse into a Failure
// before any other component inspects them.
package outcome
