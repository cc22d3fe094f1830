package transcript

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
)

// Kind is the closed set of failure categories visible to callers.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindVideoUnavailable    Kind = "VideoUnavailable"
	KindNetworkError        Kind = "NetworkError"
	KindNoCaptionsAvailable Kind = "NoCaptionsAvailable"
	KindCaptionFetchError   Kind = "CaptionFetchError"
	KindEmptyTranscript     Kind = "EmptyTranscript"
	KindUnexpectedError     Kind = "UnexpectedError"
)

var kindMessages = map[Kind]string{
	KindInvalidInput:        "invalid input",
	KindVideoUnavailable:    "video is unavailable (private, removed or region-blocked)",
	KindNetworkError:        "network error while contacting YouTube",
	KindNoCaptionsAvailable: "no captions are available for this video",
	KindCaptionFetchError:   "failed to retrieve the selected caption track",
	KindEmptyTranscript:     "the caption track contains no text",
	KindUnexpectedError:     "unexpected error",
}

// Message returns the user-facing description of the kind.
func (k Kind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return kindMessages[KindUnexpectedError]
}

// Sentinels a Platform wraps so the core can classify its failures.
var (
	ErrVideoUnavailable = errors.New("video unavailable")
	ErrNoCaptions       = errors.New("no captions")
	ErrNetwork          = errors.New("network error")
)

// Error is a classified failure inside one request.
type Error struct {
	Kind    Kind
	VideoID string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Message()
	}
	return e.Kind.Message() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, videoID string, err error) *Error {
	return &Error{Kind: kind, VideoID: videoID, Err: err}
}

func errorf(kind Kind, videoID, format string, args ...any) *Error {
	return newError(kind, videoID, fmt.Errorf(format, args...))
}

// KindOf returns the kind carried by err, or UnexpectedError when err was never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpectedError
}

// classifyPlatformError maps an arbitrary error from the metadata stage onto the taxonomy.
// Unknown upstream variants fall through to UnexpectedError.
func classifyPlatformError(err error) Kind {
	var classified *Error
	switch {
	case errors.As(err, &classified):
		return classified.Kind
	case errors.Is(err, ErrVideoUnavailable):
		return KindVideoUnavailable
	case errors.Is(err, ErrNoCaptions):
		return KindNoCaptionsAvailable
	case isNetworkError(err):
		return KindNetworkError
	default:
		return KindUnexpectedError
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, ErrNetwork) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var statusErr *engine.StatusError
	if errors.As(err, &statusErr) {
		return engine.IsRetryableStatus(statusErr.StatusCode)
	}
	return false
}
