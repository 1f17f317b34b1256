package session

// ErrorKind buckets every failure into the retry semantics the caller needs:
// validation is never retried, authorization means re-join, conflict means
// back off, not_found means recreate, dependency is safe to retry.
type ErrorKind uint8

const (
	ErrorKindValidation ErrorKind = iota
	ErrorKindAuthorization
	ErrorKindConflict
	ErrorKindNotFound
	ErrorKindDependency
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "validation"
	case ErrorKindAuthorization:
		return "authorization"
	case ErrorKindConflict:
		return "conflict"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindDependency:
		return "dependency"
	}
	return "unknown"
}

// Error is the structured failure result: a stable machine-readable Code plus
// a human string, propagated by value, never by panic.
type Error struct {
	Kind  ErrorKind
	Code  string
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Msg + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by Code so wrapped instances compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrRoomNotFound        = &Error{Kind: ErrorKindNotFound, Code: "room_not_found", Msg: "room does not exist or has expired"}
	ErrRoomStateMissing    = &Error{Kind: ErrorKindNotFound, Code: "room_state_missing", Msg: "room has no game state yet; retry or recreate"}
	ErrInvalidPasskey      = &Error{Kind: ErrorKindAuthorization, Code: "invalid_passkey", Msg: "passkey does not match"}
	ErrControllerTaken     = &Error{Kind: ErrorKindConflict, Code: "controller_taken", Msg: "another session holds the controller"}
	ErrControllerLost      = &Error{Kind: ErrorKindAuthorization, Code: "controller_lost", Msg: "controller lease is gone or held by someone else"}
	ErrInvalidHostToken    = &Error{Kind: ErrorKindAuthorization, Code: "invalid_hostToken", Msg: "host credential does not match"}
	ErrNotAcceptingAnswers = &Error{Kind: ErrorKindConflict, Code: "not_accepting_answers", Msg: "answers are only accepted while the question is live"}
	ErrInvalidChoice       = &Error{Kind: ErrorKindValidation, Code: "invalid_choice", Msg: "choice must be A-D or a recognized command"}
	ErrInvalidPhase        = &Error{Kind: ErrorKindValidation, Code: "invalid_phase", Msg: "unknown game phase"}
	ErrAllocationExhausted = &Error{Kind: ErrorKindDependency, Code: "allocation_exhausted", Msg: "could not allocate a unique room code"}
)

// dependencyErr wraps a store failure; these are the only retry-safe errors.
func dependencyErr(err error) *Error {
	return &Error{Kind: ErrorKindDependency, Code: "dependency_unavailable", Msg: "store unreachable", cause: err}
}
