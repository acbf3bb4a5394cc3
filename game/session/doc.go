// Package session tracks authenticated sessions and their connection
// bindings.
//
// Invariants enforced by the Registry:
//   - a session is bound to at most one connection, and a connection to
//     at most one session
//   - a user has at most one live session; creating a new one expires
//     any prior session of the same user
//   - a connection already bound to a session can never adopt another
//     one, and a session with a live connection can never be taken over
//     (hijack); only an abandoned session can be adopted
//
// Sessions expire a fixed interval after creation regardless of
// activity, on explicit logout, or when superseded. Expiry is idempotent
// and notifies the last-known connection.
package session
