// Package match tracks live matches and forms new ones from the
// matchmaking queue.
//
// Every Match owns one rules-engine instance and three independent
// one-shot timers: idle expiry (rearmed on every successful move), max
// lifetime (fixed from creation), and cleanup (armed once the game is
// over). Whichever fires first expires the match, which cancels the
// others; timer callbacks re-check liveness under the registry lock, so
// a cancelled or late timer never touches a removed match.
//
// The Registry notifies participants itself: state broadcasts go to
// every participant with a live connection, never only the requester.
// Connection status is read through the Presence view, implemented by
// the session registry. Lock order is queue, then match registry, then
// presence; nothing calls back into this package while holding a lock
// further down that chain.
package match
