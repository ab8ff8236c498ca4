package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrConfiguration      = errors.New("configuration error")
	ErrStorage            = errors.New("storage error")
	ErrExtractionFailed   = errors.New("failed to parse PDF or PDF is empty")
)

// UpstreamError is a failed call to the LLM provider. StatusCode is zero for
// transport-level failures.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && strings.TrimSpace(e.Body) != "":
		return fmt.Sprintf("%s upstream status %d: %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
	case e.StatusCode != 0:
		return fmt.Sprintf("%s upstream status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s upstream request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s upstream request failed", e.Provider)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}

// wrapKind keeps the sentinel kind visible to errors.Is while adding context.
func wrapKind(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}
