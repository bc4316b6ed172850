// Package middleware provides net/http integration for authcore.
//
// [Guard] authenticates requests by verifying the Authorization bearer token
// and stashing the resulting claims in the request context, where handlers
// retrieve them with [ClaimsFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP concerns (headers, status codes, request
// context) into engine calls. All verification logic lives in the engine.
//
// # What this package must NOT do
//
//   - Touch the UserStore or issue tokens.
//   - Make authorization decisions beyond "is this token valid".
package middleware
