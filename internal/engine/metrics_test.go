package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	before := GetMetrics()

	IncrToolCalls()
	IncrToolCalls()
	RecordSuccess(120)
	RecordFailure("EmptyTranscript")
	IncrCaptionRequests()
	IncrCaptionErrors()

	after := GetMetrics()
	assert.Equal(t, before["tool_calls"]+2, after["tool_calls"])
	assert.Equal(t, before["tool_successes"]+1, after["tool_successes"])
	assert.Equal(t, before["transcript_chars"]+120, after["transcript_chars"])
	assert.Equal(t, before["failures_EmptyTranscript"]+1, after["failures_EmptyTranscript"])
	assert.Equal(t, before["caption_requests"]+1, after["caption_requests"])
	assert.Equal(t, before["caption_errors"]+1, after["caption_errors"])
}

func TestFormatMetrics(t *testing.T) {
	RecordFailure("NetworkError")
	RecordFailure("InvalidInput")

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "tool_calls "))
	assert.Contains(t, out, "cache_misses ")

	inv := strings.Index(out, "failures_InvalidInput ")
	net := strings.Index(out, "failures_NetworkError ")
	assert.True(t, inv > 0 && net > inv, "failure kinds should be sorted:\n%s", out)
}

func TestTrackOperationPassesError(t *testing.T) {
	want := errors.New("boom")
	err := TrackOperation(context.Background(), "op", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestTrackOperationReportsSlowFailure(t *testing.T) {
	var buf bytes.Buffer
	prevLog, prevSlow := slog.Default(), slowOperation
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	slowOperation = 0
	t.Cleanup(func() {
		slog.SetDefault(prevLog)
		slowOperation = prevSlow
	})

	err := TrackOperation(context.Background(), "transcript", func(context.Context) error {
		time.Sleep(time.Millisecond)
		return errors.New("NoCaptionsAvailable: none listed")
	})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "slow operation")
	assert.Contains(t, buf.String(), "op=transcript")
	assert.Contains(t, buf.String(), "NoCaptionsAvailable")
}
