package fetch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport covers connectivity failures, timeouts and cancellation.
	ErrTransport = errors.New("transport failure")
	// ErrStatus is matched by every *StatusError.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode means the body did not match the expected shape.
	ErrDecode = errors.New("decode response")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
