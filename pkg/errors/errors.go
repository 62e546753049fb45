// Package errors defines the coded errors shared by every villas package.
//
// Grid, room, blueprint, plan and store failures all carry a [Code]. Errors
// nest: a blueprint that fails to build wraps the room error that caused it,
// so callers can test for either code.
//
//	_, err := blueprint.Build(bp)
//	errors.Is(err, errors.ErrCodeInvalidFormat) // the blueprint
//	errors.Is(err, errors.ErrCodeInvalidRoom)   // the room inside it
//	errors.RootCode(err)                        // INVALID_ROOM
//
// [UserMessage] joins the messages of every level without the code prefixes,
// which is what the CLI prints. The HTTP server maps [RootCode] to a status.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"     // bad argument or request
	ErrCodeInvalidTile      Code = "INVALID_TILE"      // unknown tile rune or name
	ErrCodeInvalidBounds    Code = "INVALID_BOUNDS"    // non-positive width or height
	ErrCodeInvalidPlacement Code = "INVALID_PLACEMENT" // replacement rule violated
	ErrCodeInvalidRoom      Code = "INVALID_ROOM"      // room shape rules violated
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"    // undecodable blueprint or unknown format
	ErrCodeInvalidName      Code = "INVALID_NAME"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeOutOfBounds      Code = "OUT_OF_BOUNDS" // index outside a grid
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an error with code and a formatted message caused by cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// walk calls fn for each *Error in err's chain, outermost first, until fn
// returns false.
func walk(err error, fn func(*Error) bool) {
	var e *Error
	for errors.As(err, &e) {
		if !fn(e) {
			return
		}
		err = e.Cause
	}
}

// Is reports whether any *Error in err's chain has code.
func Is(err error, code Code) bool {
	found := false
	walk(err, func(e *Error) bool {
		found = e.Code == code
		return !found
	})
	return found
}

// GetCode returns the outermost code in err's chain, or "" if there is none.
func GetCode(err error) Code {
	return GetCodeOr(err, "")
}

// GetCodeOr is like [GetCode] but returns fallback instead of "".
func GetCodeOr(err error, fallback Code) Code {
	if e := (*Error)(nil); errors.As(err, &e) {
		return e.Code
	}
	return fallback
}

// RootCode returns the innermost code in err's chain, or "" if there is none.
func RootCode(err error) Code {
	var code Code
	walk(err, func(e *Error) bool {
		code = e.Code
		return true
	})
	return code
}

// UserMessage returns err's messages joined by ": ", without codes.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
