// Package session implements a Redis-backed registry of active sessions,
// indexed per user, so that logout can revoke everything a user holds.
//
// # Role in the token model
//
// Access and refresh tokens are self-verifying; the registry is bookkeeping,
// not an authorization gate. Deleting a record stops nothing that is already
// signed — it only reflects that the server no longer considers the session
// live. Hosts wanting a refresh-token allowlist can consult
// [Registry.ActiveSessionIDs] before honoring a refresh.
//
// # Architecture boundaries
//
// This package owns Redis key layout and record lifecycle. Which sessions to
// create or revoke is the Engine's decision.
//
// # What this package must NOT do
//
//   - Validate tokens or read user records.
//   - Import authcore or any sibling package.
package session
