package plan

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrData indicates bad caller input. Recoverable at the caller boundary.
	ErrData = errors.New("data error")

	// ErrLogic indicates an internal invariant violation. Fatal.
	ErrLogic = errors.New("logic error")

	// ErrRuntime indicates a registration conflict detected while
	// initializing a plan.
	ErrRuntime = errors.New("runtime error")
)

// DataError reports bad input supplied by a caller.
// Wraps ErrData for errors.Is() compatibility.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string {
	if e == nil || e.Msg == "" {
		return ErrData.Error()
	}
	return fmt.Sprintf("%s: %s", ErrData.Error(), e.Msg)
}

func (e *DataError) Unwrap() error { return ErrData }

func dataErrorf(format string, args ...interface{}) error {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}

// LogicError reports an internal invariant violation. The message names the
// offending plan or operation.
type LogicError struct {
	Msg string
	Err error // optional underlying error, e.g. a failed check
}

func (e *LogicError) Error() string {
	if e == nil || e.Msg == "" {
		return ErrLogic.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrLogic.Error(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrLogic.Error(), e.Msg)
}

func (e *LogicError) Unwrap() error { return ErrLogic }

func logicErrorf(format string, args ...interface{}) error {
	return &LogicError{Msg: fmt.Sprintf(format, args...)}
}

// RuntimeError reports an id collision between plans of different
// operations during registration.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	if e == nil || e.Msg == "" {
		return ErrRuntime.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRuntime.Error(), e.Msg)
}

func (e *RuntimeError) Unwrap() error { return ErrRuntime }
