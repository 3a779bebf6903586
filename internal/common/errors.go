// Package common defines shared constants and sentinel errors used across
// the unicampus client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrUnauthorized means the current credential was rejected by the
	// backend. It is recoverable: the gateway refreshes the credential and
	// retries once before surfacing anything else to the caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthExpired is terminal: the session could not be refreshed and
	// the user has to sign in again. Stored credentials are wiped before
	// this error is returned.
	ErrAuthExpired = errors.New("authentication expired")

	// Transport/backend failure classes. None of these touch the stored
	// credential and none are retried automatically.
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrServerError        = errors.New("server error")
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)
