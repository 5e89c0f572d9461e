package errors

import (
	"errors"
	"net/http"
)

// Stable error codes returned to clients.
const (
	CodeNotFound         = "NOT_FOUND"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeAlreadyInTeam    = "ALREADY_IN_TEAM"
	CodeNotInTeam        = "NOT_IN_TEAM"
	CodeInvalidState     = "INVALID_STATE"
	CodeDuplicate        = "DUPLICATE"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Generic errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Membership errors
var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrRequestNotFound     = errors.New("join request not found")

	ErrNotLeader    = errors.New("only the team leader can perform this action")
	ErrNotRecipient = errors.New("invite is not addressed to this participant")

	ErrTeamFull            = errors.New("team is full")
	ErrCapacityBelowRoster = errors.New("max members cannot be lower than the current team size")

	ErrAlreadyInTeam       = errors.New("participant already belongs to a team")
	ErrTargetAlreadyInTeam = errors.New("participant is already in a team")
	ErrAlreadyMember       = errors.New("participant is already a member of this team")

	ErrNotInTeam = errors.New("participant is not a member of this team")

	ErrTargetUnavailable    = errors.New("participant is not available")
	ErrRequesterUnavailable = errors.New("you are not available for team joining")
	ErrInviteNotPending     = errors.New("invite has already been responded to")
	ErrInviteExpired        = errors.New("invite has expired")
	ErrRequestNotPending    = errors.New("join request has already been processed")
	ErrLeaderCannotLeave    = errors.New("team leader cannot leave the team")
	ErrProfileLocked        = errors.New("profile editing is locked after the team formation deadline")

	ErrDuplicateInvite  = errors.New("invite already sent to this participant")
	ErrDuplicateRequest = errors.New("join request already pending")
)

type kind struct {
	status int
	code   string
}

var (
	kindNotFound         = kind{http.StatusNotFound, CodeNotFound}
	kindPermissionDenied = kind{http.StatusForbidden, CodePermissionDenied}
	kindCapacity         = kind{http.StatusConflict, CodeCapacityExceeded}
	kindAlreadyInTeam    = kind{http.StatusConflict, CodeAlreadyInTeam}
	kindNotInTeam        = kind{http.StatusConflict, CodeNotInTeam}
	kindInvalidState     = kind{http.StatusConflict, CodeInvalidState}
	kindDuplicate        = kind{http.StatusConflict, CodeDuplicate}
	kindValidation       = kind{http.StatusBadRequest, CodeValidation}
	kindUnauthorized     = kind{http.StatusUnauthorized, CodeUnauthorized}
	kindForbidden        = kind{http.StatusForbidden, CodePermissionDenied}
	kindInternal         = kind{http.StatusInternalServerError, CodeInternalError}
)

var sentinelKinds = map[error]kind{
	ErrNotFound:     kindNotFound,
	ErrInvalidInput: kindValidation,
	ErrUnauthorized: kindUnauthorized,
	ErrForbidden:    kindForbidden,

	ErrTeamNotFound:        kindNotFound,
	ErrParticipantNotFound: kindNotFound,
	ErrInviteNotFound:      kindNotFound,
	ErrRequestNotFound:     kindNotFound,

	ErrNotLeader:    kindPermissionDenied,
	ErrNotRecipient: kindPermissionDenied,

	ErrTeamFull:            kindCapacity,
	ErrCapacityBelowRoster: kindCapacity,

	ErrAlreadyInTeam:       kindAlreadyInTeam,
	ErrTargetAlreadyInTeam: kindAlreadyInTeam,
	ErrAlreadyMember:       kindAlreadyInTeam,

	ErrNotInTeam: kindNotInTeam,

	ErrTargetUnavailable:    kindInvalidState,
	ErrRequesterUnavailable: kindInvalidState,
	ErrInviteNotPending:     kindInvalidState,
	ErrInviteExpired:        kindInvalidState,
	ErrRequestNotPending:    kindInvalidState,
	ErrLeaderCannotLeave:    kindInvalidState,
	ErrProfileLocked:        kindInvalidState,

	ErrDuplicateInvite:  kindDuplicate,
	ErrDuplicateRequest: kindDuplicate,
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// From resolves any error into an AppError. Existing AppErrors pass through,
// known sentinels (also when wrapped) get their kind, anything else is internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	for sentinel, k := range sentinelKinds {
		if errors.Is(err, sentinel) {
			return NewAppError(k.status, k.code, sentinel.Error(), err)
		}
	}

	return InternalError(err)
}

// CodeOf returns the stable error code for err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return From(err).Code
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodePermissionDenied, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}
