// Package serr holds common error objects used across the RPAL server. The
// Error type can be created with one or more 'cause' errors; calling
// errors.Is() on an Error with any of its causes as the target returns true.
//
// This package also holds the global error constants the server's layers
// agree on.
package serr

import "errors"

var (
	ErrNotFound      = errors.New("the requested run could not be found")
	ErrAlreadyExists = errors.New("a run with the same ID already exists")
	ErrDB            = errors.New("an error occured with the DB")
	ErrBadArgument   = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal = errors.New("malformed data in request")
	ErrBadToken      = errors.New("the provided claim token is not valid")
)

// Error is a typed error that carries a message together with zero or more
// errors it considers to be its causes. It is compatible with errors.Is:
// checking an Error against any of its causes returns true, so callers can
// test failure conditions without manual typecasting.
//
// Do not construct Error directly; call New.
type Error struct {
	msg   string
	cause []error
}

// Error returns the Error's message. If a cause is present, the message of
// the first cause is appended; if the Error has no message of its own, the
// first cause's message alone is returned.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}

	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}

	return e.msg
}

// Unwrap returns the causes of the Error, or nil if none were defined. This
// function is for interaction with the errors API.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether the Error either is itself the given target error, or
// has it among its causes. This function is for interaction with the errors
// API.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allCausesEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allCausesEqual = false
					break
				}
			}
			if allCausesEqual {
				return true
			}
		}
	}

	for i := range e.cause {
		if e.cause[i] == target {
			return true
		}
	}
	return false
}

// WrapDB creates a new Error that wraps the given error as a cause and adds
// ErrDB as another cause. msg may be left as "".
func WrapDB(msg string, err error) Error {
	return Error{
		msg:   msg,
		cause: []error{err, ErrDB},
	}
}

// New creates a new Error with the given message, along with any errors it
// should wrap as its causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
