// Package jwt implements issuance and verification of the engine's
// access/refresh token pairs.
//
// # Token model
//
// Both tokens are HS256-signed, self-contained credentials minted from the
// same secret. Access tokens carry the full identity (userId, email,
// username); refresh tokens carry userId only. The two are distinguished by
// claim shape and lifetime, not by separate signing keys — a deliberate
// choice, since refresh tokens expose no extra claims worth isolating.
//
// # Architecture boundaries
//
// This package owns signing, parsing, and expiry classification. Whether a
// token should be honored for a given user (revocation, account state) is
// the Engine's concern.
//
// # What this package must NOT do
//
//   - Perform I/O; parsing and signing are pure computation and safe to call
//     concurrently.
//   - Persist issued tokens.
//   - Accept any signing algorithm other than the configured HS256.
package jwt
