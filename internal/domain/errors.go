package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no active session")
	ErrSecretNotFound  = errors.New("secret not found")
	ErrMissingUsername = errors.New("username is required")

	// ErrTransport marks failures of the network layer underneath a protocol call.
	ErrTransport = errors.New("portal transport failure")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidCaptcha      = errors.New("invalid captcha code")
	ErrInvalidRechargeCode = errors.New("invalid recharge code")
	ErrSessionExpired      = errors.New("portal session expired")
	ErrUnsupportedAction   = errors.New("unsupported history action")
	ErrInvalidPeriod       = errors.New("invalid history period")
	ErrPortalRejected      = errors.New("portal rejected the request")
)

// LogoutError is returned when the network portal could not be reached to close
// the open session.
type LogoutError struct {
	Program string
	Err     error
}

func (e *LogoutError) Error() string {
	return fmt.Sprintf(
		"network problems prevent closing the session; you may already be disconnected, try '%s down' in a few minutes: %v",
		e.Program, e.Err,
	)
}

func (e *LogoutError) Unwrap() error {
	return e.Err
}
