package authcore

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode/utf8"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

const (
	minPasswordLength = 8
	maxNameLength     = 50
)

// Validate checks the registration input against the engine's constraints:
// a parseable email address, a 3-20 character alphanumeric-or-underscore
// username, a password of at least 8 characters, and non-empty names of at
// most 50 characters. Failures wrap [ErrValidation].
func (r RegisterRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if !usernamePattern.MatchString(r.Username) {
		return fmt.Errorf("%w: username must be 3-20 characters of [A-Za-z0-9_]", ErrValidation)
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if err := validateName("firstName", r.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", r.LastName); err != nil {
		return err
	}

	return nil
}

// Validate checks the login input. The password is only checked for
// presence: login must not leak which constraint a stored password predates.
func (r LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password must not be empty", ErrValidation)
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email must not be empty", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}

	return nil
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
	}
	if n > maxNameLength {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrValidation, field, maxNameLength)
	}

	return nil
}
