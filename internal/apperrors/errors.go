package apperrors

import (
	"errors"
	"net/http"
)

// Kind groups domain errors by how callers should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindNotFound
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a domain error with a stable code and a user-facing message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrUnauthenticated = newError(KindAuthentication, "unauthenticated", "Authentication error")

	ErrNotMember  = newError(KindAuthorization, "not_member", "You are not a member of this chat")
	ErrNotAdmin   = newError(KindAuthorization, "not_admin", "You are not an admin of this chat")
	ErrSelfTarget = newError(KindAuthorization, "self_target", "You cannot perform this action on yourself")
	ErrSoleAdmin  = newError(KindAuthorization, "sole_admin", "You can't leave if you are the only admin")
	ErrNotAuthor  = newError(KindAuthorization, "not_author", "Only the author can change this message")
	ErrNotFriends = newError(KindAuthorization, "not_friends", "You are not friends with this user")

	ErrAlreadyMember = newError(KindConflict, "already_member", "User is already in this chat")
	ErrAlreadyAdmin  = newError(KindConflict, "already_admin", "User is already admin of this chat")
	ErrContactExists = newError(KindConflict, "contact_exists", "Contact request already sent or accepted")

	ErrChatNotFound    = newError(KindNotFound, "chat_not_found", "Chat not found")
	ErrUserNotFound    = newError(KindNotFound, "user_not_found", "User not found")
	ErrMemberNotFound  = newError(KindNotFound, "member_not_found", "User not found in this chat")
	ErrMessageNotFound = newError(KindNotFound, "message_not_found", "Message not found")
	ErrContactNotFound = newError(KindNotFound, "contact_not_found", "Contact not found")

	ErrRateLimited = newError(KindRateLimited, "rate_limited", "Too many requests, slow down")
)

// Validation builds a validation error carrying msg.
func Validation(msg string) error {
	return newError(KindValidation, "validation", msg)
}

// Internal wraps a store or infrastructure failure. The message never leaks err.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindInternal, Code: "internal", Message: "Internal server error", err: err}
}

// KindOf reports the kind of err; unknown errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Public returns the code and message that may be shown to a client.
func Public(err error) (code, message string) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Code, appErr.Message
	}
	return "internal", "Internal server error"
}

// HTTPStatus maps err to the response status used by the REST surface.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
