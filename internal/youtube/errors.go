package youtube

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// ErrPoTokenRequired means a caption track needs a browser-issued PO token and the
// transcript panel could not stand in for it.
var ErrPoTokenRequired = fmt.Errorf("%w: caption track requires a browser PO token", transcript.ErrNoCaptions)

// errEmptyDocument is returned for a 200 response with no caption document in it.
var errEmptyDocument = errors.New("empty caption document")

// PlayabilityError is a non-OK playabilityStatus from YouTube.
type PlayabilityError struct {
	VideoID string
	Status  string // ERROR, UNPLAYABLE, LOGIN_REQUIRED, LIVE_STREAM_OFFLINE, ...
	Reason  string
}

func (e *PlayabilityError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("video %s: %s", e.VideoID, e.Status)
	}
	return fmt.Sprintf("video %s: %s (%s)", e.VideoID, e.Status, e.Reason)
}

// Is classifies the status for the transcript core: a bot check is a network-level
// refusal, every other non-OK status means the video itself is not watchable.
func (e *PlayabilityError) Is(target error) bool {
	switch target {
	case transcript.ErrNetwork:
		return e.botCheck()
	case transcript.ErrVideoUnavailable:
		return !e.botCheck()
	}
	return false
}

func (e *PlayabilityError) botCheck() bool {
	return strings.Contains(strings.ToLower(e.Reason), "not a bot")
}

// definitive reports whether another client type cannot change the answer.
func (e *PlayabilityError) definitive() bool {
	if e.Status == "ERROR" || e.Status == "UNPLAYABLE" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Reason), "private")
}

func playability(videoID string, pr *playerResp) *PlayabilityError {
	status, reason := pr.status()
	if status == "" || status == "OK" {
		return nil
	}
	return &PlayabilityError{VideoID: videoID, Status: status, Reason: reason}
}
