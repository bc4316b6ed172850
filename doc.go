// Package authcore provides an embeddable authentication engine: bcrypt
// credential verification, signed JWT access/refresh token pairs, session
// revocation through a caller-supplied user store, and async audit logging
// of identity-affecting actions.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Password hashing is CPU-bound and runs on the calling
// goroutine; callers fan out with goroutines as usual.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (User, AuthResult, AuditEvent). Internal coordination such
// as audit dispatch and metric storage lives under internal/ and is never
// exported directly.
//
// Persistence is the host's concern. The engine talks to a caller-supplied
// [UserStore] for user records and session revocation and never opens a
// database connection of its own. The optional Redis-backed
// [github.com/kweilun/authcore/session.Registry] covers the active-session
// index when the host wants a ready-made one.
//
// # What this package must NOT do
//
//   - HTTP routing, request decoding, or response rendering; the hosting
//     layer maps error kinds to transport responses.
//   - Persist or log plaintext passwords or issued tokens.
//   - Retry failed store operations; every operation completes or fails once.
//
// # Token model
//
// Access and refresh tokens are self-contained HS256-signed credentials.
// Logout removes server-tracked session records only: it cannot invalidate
// an already-issued access token before its natural expiry. Hosts needing
// hard revocation must shorten the access TTL or add a per-request
// server-side session check.
package authcore
