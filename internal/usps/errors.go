package usps

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is matched by every *AuthError.
	ErrAuthenticationFailed = errors.New("usps: authentication failed")
	// ErrMissingPageElement means the page layout no longer matches, it is
	// never returned when the cause was an expired session.
	ErrMissingPageElement = errors.New("usps: missing page element")
	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("usps: cookie persistence failed")
	// ErrNoLoginToken means the login page did not contain the form token.
	ErrNoLoginToken = fmt.Errorf("no login token found: %w", ErrMissingPageElement)

	// errSessionExpired never leaves the package, authenticated turns it
	// into a re-login or an *AuthError.
	errSessionExpired = errors.New("usps: session expired")
)

// AuthError is returned when the portal rejects a login. Reason carries the
// site's own error text when there is one.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return ErrAuthenticationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAuthenticationFailed.Error(), e.Reason)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// MissingElementError names the required container that could not be found.
type MissingElementError struct {
	Page     string
	Selector string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("%s: %s page has no %q", ErrMissingPageElement.Error(), e.Page, e.Selector)
}

func (e *MissingElementError) Is(target error) bool {
	return target == ErrMissingPageElement
}

// PersistenceError wraps a failure to read, decode or write the cookie blob.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPersistence.Error(), e.Op, e.Err.Error())
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
