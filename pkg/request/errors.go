package request

import "errors"

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidMethod = errors.New("invalid method")
	ErrEncodeBody    = errors.New("encode body")
	ErrInvalidHeader = errors.New("invalid header")
	ErrNoBody        = errors.New("request has no body")
)

// BuildError is the construction error latched on a Request by a failed step.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string {
	return "build request: " + e.Op + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error { return e.Err }
