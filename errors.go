package authcore

import (
	"errors"
	"fmt"

	"github.com/kweilun/authcore/jwt"
)

var (
	// ErrAlreadyExists is returned by Register when the email or username is taken.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned for unknown email and wrong password alike,
	// so callers cannot be used as a user-enumeration oracle.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired is returned when a presented token's expiry has elapsed.
	ErrTokenExpired = jwt.ErrTokenExpired
	// ErrTokenInvalid is returned for malformed tokens and signature mismatches.
	ErrTokenInvalid = jwt.ErrTokenInvalid
	// ErrStoreUnavailable wraps any UserStore lookup or write failure.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrInternal wraps hashing and signing failures.
	ErrInternal = errors.New("internal authentication error")
	// ErrValidation wraps request input constraint violations.
	ErrValidation = errors.New("invalid request input")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or
	// partially constructed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// AlreadyExistsError reports a registration conflict together with the field
// that collided. When both email and username are taken, Field is "email".
type AlreadyExistsError struct {
	Field string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("account already exists: %s taken", e.Field)
}

// Is makes the typed conflict matchable via errors.Is(err, ErrAlreadyExists).
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func internalError(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
