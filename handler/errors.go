package handler

import "errors"

var (
	ErrModuleNotFound = errors.New("handler module not found")
	ErrSymbolNotFound = errors.New("handler symbol not found")
	ErrMethodNotFound = errors.New("handler method not found")
)

// ResolutionError reports which resolution step failed for a reference.
type ResolutionError struct {
	Ref    Ref
	Err    error
	Detail string
}

func (e *ResolutionError) Error() string {
	msg := "handler: " + e.Err.Error() + ": " + e.Ref.String()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }
