package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ToolCalls         atomic.Int64
	ToolSuccesses     atomic.Int64
	MetadataRequests  atomic.Int64
	WatchPageRequests atomic.Int64
	PlayerRequests    atomic.Int64
	PanelRequests     atomic.Int64
	CaptionRequests   atomic.Int64
	CaptionErrors     atomic.Int64
	TranscriptChars   atomic.Int64
	failuresMu        sync.Mutex
	failuresByKind    map[string]int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	m := map[string]int64{
		"tool_calls":          metrics.ToolCalls.Load(),
		"tool_successes":      metrics.ToolSuccesses.Load(),
		"metadata_requests":   metrics.MetadataRequests.Load(),
		"watch_page_requests": metrics.WatchPageRequests.Load(),
		"player_requests":     metrics.PlayerRequests.Load(),
		"panel_requests":      metrics.PanelRequests.Load(),
		"caption_requests":    metrics.CaptionRequests.Load(),
		"caption_errors":      metrics.CaptionErrors.Load(),
		"transcript_chars":    metrics.TranscriptChars.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
	metrics.failuresMu.Lock()
	for kind, n := range metrics.failuresByKind {
		m["failures_"+kind] = n
	}
	metrics.failuresMu.Unlock()
	return m
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"tool_calls", "tool_successes",
		"metadata_requests", "watch_page_requests", "player_requests", "panel_requests",
		"caption_requests", "caption_errors", "transcript_chars",
		"cache_hits", "cache_misses",
	}
	var failureKeys []string
	for k := range m {
		if strings.HasPrefix(k, "failures_") {
			failureKeys = append(failureKeys, k)
		}
	}
	sort.Strings(failureKeys)
	keys = append(keys, failureKeys...)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the youtube client.
func IncrMetadataRequests()  { metrics.MetadataRequests.Add(1) }
func IncrWatchPageRequests() { metrics.WatchPageRequests.Add(1) }
func IncrPlayerRequests()    { metrics.PlayerRequests.Add(1) }
func IncrPanelRequests()     { metrics.PanelRequests.Add(1) }
func IncrCaptionRequests()   { metrics.CaptionRequests.Add(1) }
func IncrCaptionErrors()     { metrics.CaptionErrors.Add(1) }

// Incrementors for the transcript service.
func IncrToolCalls() { metrics.ToolCalls.Add(1) }

// RecordSuccess counts a successful tool call and the size of its transcript.
func RecordSuccess(chars int) {
	metrics.ToolSuccesses.Add(1)
	metrics.TranscriptChars.Add(int64(chars))
}

// RecordFailure counts a failed tool call under its failure kind.
func RecordFailure(kind string) {
	metrics.failuresMu.Lock()
	if metrics.failuresByKind == nil {
		metrics.failuresByKind = make(map[string]int64)
	}
	metrics.failuresByKind[kind]++
	metrics.failuresMu.Unlock()
}

// slowOperation is the duration past which TrackOperation logs a warning.
var slowOperation = 5 * time.Second

// TrackOperation logs a warning if an operation takes longer than slowOperation,
// noting whether it failed.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > slowOperation {
		attrs := []any{slog.String("op", name), slog.Duration("elapsed", elapsed)}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		slog.Warn("slow operation", attrs...)
	}
	return err
}
