package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a remote failure by what the sync engine should do with it.
type Kind int

const (
	// KindTransient: network failure, timeout or server fault. Worth retrying.
	KindTransient Kind = iota
	// KindDefinite: the server understood and refused the request. Retrying cannot help.
	KindDefinite
	// KindUnauthorized: the credentials were rejected.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindDefinite:
		return "definite"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "transient"
	}
}

// Error is a classified remote API failure.
type Error struct {
	Err        error
	Message    string
	Kind       Kind
	StatusCode int // 0 when no response was received
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote %s error: %v", e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status code outside 2xx to an error kind.
func KindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindUnauthorized
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return KindTransient
	case code >= 400 && code < 500:
		return KindDefinite
	default:
		return KindTransient
	}
}

// KindOf returns the kind of err. Errors that are not *Error count as transient.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}

// IsDefinite reports whether the server definitively rejected the request
func IsDefinite(err error) bool {
	return err != nil && KindOf(err) == KindDefinite
}

// IsTransient reports whether the failure may succeed on retry
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}

// IsUnauthorized reports whether the credentials were rejected
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}
