package models

import (
	"errors"
	"fmt"
)

// Error codes carried by SnapshotError.
const (
	ErrCodeNavigationTimeout = "NAVIGATION_TIMEOUT"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeRender            = "RENDER_FAILED"
	ErrCodeScreenshot        = "SCREENSHOT_FAILED"
	ErrCodeHTTPStatus        = "HTTP_STATUS"
	ErrCodeFetch             = "FETCH_FAILED"
	ErrCodeWrite             = "WRITE_FAILED"
	ErrCodeManifestNotFound  = "MANIFEST_NOT_FOUND"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
)

// SnapshotError is the internal error type carrying an error code.
// It supports error wrapping via Unwrap.
type SnapshotError struct {
	Code    string
	Message string
	Err     error
}

func (e *SnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// NewSnapshotError creates a new SnapshotError.
func NewSnapshotError(code, message string, err error) *SnapshotError {
	return &SnapshotError{Code: code, Message: message, Err: err}
}

// ErrorCode returns the code of the first SnapshotError in err's chain.
func ErrorCode(err error) string {
	var se *SnapshotError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
