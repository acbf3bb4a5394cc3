// Package service is the protocol dispatcher: a stateless façade that
// translates inbound wire messages into credential-store, session,
// matchmaking, and match operations.
//
// Error handling is deliberately asymmetric. Domain errors produce
// exactly one typed error message on the requesting connection; state
// changes are broadcast by the invoked operation to every affected
// connection, not only the requester.
package service
