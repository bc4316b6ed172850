// Package password implements password hashing and verification with bcrypt.
//
// # Output format
//
// Hashes use the standard bcrypt modular crypt format:
//
//	$2a$<cost>$<salt+digest>
//
// The [Hasher] supports transparent cost upgrades: if the stored hash was
// produced with a lower cost than configured, [Hasher.NeedsRehash] returns
// true so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, reuse rules) is enforced by the boundary validation layer.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive
//     hashes.
//   - Import any other authcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
