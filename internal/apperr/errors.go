// Package apperr holds the error taxonomy shared by every service and its
// mapping onto HTTP status codes and client messages.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyOwner         = errors.New("already an owner")
	ErrDeliveryFailed       = errors.New("delivery failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInternal             = errors.New("internal error")
)

type kind struct {
	err    error
	status int
	msg    string
}

var kinds = []kind{
	{ErrValidation, http.StatusBadRequest, "Validation failed"},
	{ErrConflict, http.StatusBadRequest, "User with this email already exists"},
	{ErrAlreadyOwner, http.StatusBadRequest, "User is already an owner"},
	{ErrInvalidOrExpiredCode, http.StatusBadRequest, "Invalid or expired OTP"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{ErrUnauthorized, http.StatusUnauthorized, "Not authorized"},
	{ErrForbidden, http.StatusForbidden, "Not authorized to perform this action"},
	{ErrNotFound, http.StatusNotFound, "Not found"},
	{ErrDeliveryFailed, http.StatusInternalServerError, "Failed to send email"},
}

func lookup(err error) kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k
		}
	}

	return kind{ErrInternal, http.StatusInternalServerError, "Internal server error"}
}

// Status maps err onto an HTTP status. Anything outside the taxonomy is a 500.
func Status(err error) int {
	return lookup(err).status
}

// Kind returns the taxonomy sentinel err belongs to, ErrInternal if none.
func Kind(err error) error {
	return lookup(err).err
}

// Detail carries a client facing message for one occurrence of a sentinel
// while keeping errors.Is working.
type Detail struct {
	Kind error
	Msg  string
}

func (d *Detail) Error() string { return d.Msg }
func (d *Detail) Unwrap() error { return d.Kind }

// New returns an error of the given kind with a specific client message.
func New(kind error, msg string) error {
	return &Detail{Kind: kind, Msg: msg}
}

// Message returns the text that should be shown to the client. Internal
// errors never leak their wrapped details.
func Message(err error) string {
	k := lookup(err)
	if k.err == ErrInternal {
		return k.msg
	}

	var d *Detail
	if errors.As(err, &d) {
		return d.Msg
	}

	return k.msg
}
