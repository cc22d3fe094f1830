package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// fakePlatform serves canned metadata and payloads keyed by track handle.
type fakePlatform struct {
	md         Metadata
	mdErr      error
	payloads   map[string]string
	payloadErr error
	panicMsg   string
	onMetadata func()

	metadataCalls int
	payloadCalls  int
	fetched       []string
}

func (f *fakePlatform) Metadata(_ context.Context, ref VideoRef) (Metadata, error) {
	f.metadataCalls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.onMetadata != nil {
		f.onMetadata()
	}
	if f.mdErr != nil {
		return Metadata{}, f.mdErr
	}
	md := f.md
	md.VideoID = ref.ID
	return md, nil
}

func (f *fakePlatform) CaptionPayload(_ context.Context, t CaptionTrack) (string, error) {
	f.payloadCalls++
	f.fetched = append(f.fetched, t.Handle)
	if f.payloadErr != nil {
		return "", f.payloadErr
	}
	p, ok := f.payloads[t.Handle]
	if !ok {
		return "", fmt.Errorf("no payload for %s", t.Handle)
	}
	return p, nil
}

func srt(lines ...string) string {
	var sb strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&sb, "%d\n00:00:%02d,000 --> 00:00:%02d,000\n%s\n\n", i+1, i, i+1, l)
	}
	return sb.String()
}

func requireSuccess(t *testing.T, res Result) *Success {
	t.Helper()
	s, ok := res.(*Success)
	require.True(t, ok, "expected *Success, got %#v", res)
	return s
}

func requireFailure(t *testing.T, res Result, kind Kind) *Failure {
	t.Helper()
	f, ok := res.(*Failure)
	require.True(t, ok, "expected *Failure, got %#v", res)
	assert.Equal(t, kind, f.Kind, "reason: %s", f.Reason)
	assert.True(t, strings.HasPrefix(f.Reason, kind.Message()), "reason %q", f.Reason)
	return f
}

func TestRunOfficialEnglish(t *testing.T) {
	p := &fakePlatform{
		md: Metadata{
			Title:       "Title",
			Description: "Desc",
			Tracks:      TrackCatalog{{Code: "en", Origin: OriginOfficial, Handle: "en"}},
		},
		payloads: map[string]string{"en": srt("<i>Never gonna</i>", "give you up,", "never gonna let you down")},
	}
	s := requireSuccess(t, NewService(p).Run(context.Background(), videoURL, "en"))

	assert.Equal(t, "Title", s.Title)
	assert.Equal(t, "Desc", s.Description)
	assert.Equal(t, "dQw4w9WgXcQ", s.VideoID)
	assert.Equal(t, "Never gonna give you up, never gonna let you down", s.Content)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, OriginOfficial, s.Origin)
	assert.Equal(t, StageTarget, s.Stage)
	assert.Equal(t, []string{"en"}, s.AvailableCaptions)
	assert.False(t, s.Truncated)
}

func TestRunFallbackPrefersEarlierListLanguage(t *testing.T) {
	p := &fakePlatform{
		md: Metadata{Tracks: TrackCatalog{
			{Code: "a.de", Origin: OriginAutoGenerated, Handle: "de"},
			{Code: "es", Origin: OriginOfficial, Handle: "es"},
		}},
		payloads: map[string]string{"de": srt("Hallo"), "es": srt("Hola")},
	}
	s := requireSuccess(t, NewService(p).Run(context.Background(), videoURL, ""))

	assert.Equal(t, "es", s.Language)
	assert.Equal(t, "Hola", s.Content)
	assert.Equal(t, StageFallback, s.Stage)
	assert.Equal(t, []string{"es"}, p.fetched)
}

func TestRunVideoUnavailable(t *testing.T) {
	p := &fakePlatform{mdErr: fmt.Errorf("%w: this video is private", ErrVideoUnavailable)}
	f := requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindVideoUnavailable)
	assert.Contains(t, f.Reason, "private")
	assert.Zero(t, p.payloadCalls)

	var err error = f
	assert.Equal(t, string(KindVideoUnavailable)+": "+f.Reason, err.Error())
}

func TestRunEmptyTranscript(t *testing.T) {
	p := &fakePlatform{
		md:       Metadata{Tracks: TrackCatalog{{Code: "en", Origin: OriginOfficial, Handle: "en"}}},
		payloads: map[string]string{"en": srt("   ", "<i> </i>", "{\\an8}")},
	}
	requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindEmptyTranscript)
}

func TestRunInvalidInputMakesNoCalls(t *testing.T) {
	for _, tc := range []struct{ url, lang string }{
		{"", "en"},
		{"   ", "en"},
		{"https://vimeo.com/76979871", "en"},
		{"https://www.youtube.com/watch?v=bad", "en"},
		{videoURL, "not a language"},
		{videoURL, "e"},
	} {
		t.Run(tc.url+"|"+tc.lang, func(t *testing.T) {
			p := &fakePlatform{}
			requireFailure(t, NewService(p).Run(context.Background(), tc.url, tc.lang), KindInvalidInput)
			assert.Zero(t, p.metadataCalls)
			assert.Zero(t, p.payloadCalls)
		})
	}
}

func TestRunNoCaptions(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		p := &fakePlatform{md: Metadata{Title: "T"}}
		requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindNoCaptionsAvailable)
		assert.Zero(t, p.payloadCalls)
	})
	t.Run("platform sentinel", func(t *testing.T) {
		p := &fakePlatform{mdErr: fmt.Errorf("%w: tracks need a po token", ErrNoCaptions)}
		requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindNoCaptionsAvailable)
	})
}

func TestRunPlatformErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"network sentinel", fmt.Errorf("%w: dial tcp", ErrNetwork), KindNetworkError},
		{"url error", &url.Error{Op: "Get", URL: videoURL, Err: errors.New("connection refused")}, KindNetworkError},
		{"deadline", fmt.Errorf("player: %w", context.DeadlineExceeded), KindNetworkError},
		{"unknown", errors.New("innertube changed its schema again"), KindUnexpectedError},
		{"already classified", errorf(KindVideoUnavailable, "x", "gone"), KindVideoUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlatform{mdErr: tt.err}
			requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), tt.want)
		})
	}
}

func TestRunCaptionFetchError(t *testing.T) {
	p := &fakePlatform{
		md:         Metadata{Tracks: TrackCatalog{{Code: "en", Origin: OriginOfficial, Handle: "en"}}},
		payloadErr: errors.New("parse timedtext XML: unexpected EOF"),
	}
	f := requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindCaptionFetchError)
	assert.Contains(t, f.Reason, "unexpected EOF")
}

func TestRunRecoversPanic(t *testing.T) {
	p := &fakePlatform{panicMsg: "boom"}
	f := requireFailure(t, NewService(p).Run(context.Background(), videoURL, "en"), KindUnexpectedError)
	assert.Contains(t, f.Reason, "boom")
}

func TestRunCancellation(t *testing.T) {
	t.Run("before any call", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := &fakePlatform{}
		requireFailure(t, NewService(p).Run(ctx, videoURL, "en"), KindNetworkError)
		assert.Zero(t, p.metadataCalls)
	})

	t.Run("between calls", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p := &fakePlatform{
			md:         Metadata{Tracks: TrackCatalog{{Code: "en", Origin: OriginOfficial, Handle: "en"}}},
			payloads:   map[string]string{"en": srt("hi")},
			onMetadata: cancel,
		}
		requireFailure(t, NewService(p).Run(ctx, videoURL, "en"), KindNetworkError)
		assert.Equal(t, 1, p.metadataCalls)
		assert.Zero(t, p.payloadCalls)
	})
}

func TestRunTruncatesContent(t *testing.T) {
	long := strings.Repeat("слово ", 50)
	p := &fakePlatform{
		md:       Metadata{Tracks: TrackCatalog{{Code: "ru", Origin: OriginOfficial, Handle: "ru"}}},
		payloads: map[string]string{"ru": srt(long)},
	}
	s := requireSuccess(t, NewService(p, WithMaxContentChars(20)).Run(context.Background(), videoURL, "ru"))
	assert.True(t, s.Truncated)
	assert.True(t, strings.HasSuffix(s.Content, "..."), s.Content)
	assert.LessOrEqual(t, utf8.RuneCountInString(s.Content), 23)
	assert.True(t, utf8.ValidString(s.Content))
}

func TestSelectAndRenderEmptyCatalog(t *testing.T) {
	p := &fakePlatform{}
	_, _, err := NewService(p).SelectAndRender(context.Background(), nil, "en")
	assert.Equal(t, KindNoCaptionsAvailable, KindOf(err))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Zero(t, p.payloadCalls)
}

func TestListerFillsLanguage(t *testing.T) {
	p := &fakePlatform{md: Metadata{Tracks: TrackCatalog{
		{Code: "a.en", Origin: OriginAutoGenerated},
		{Code: "iw", Origin: OriginOfficial},
		{Code: "xx", Language: "de", Origin: OriginOfficial},
	}}}
	md, err := NewLister(p, nil).Fetch(context.Background(), VideoRef{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", md.VideoID)
	assert.Equal(t, "en", md.Tracks[0].Language)
	assert.Equal(t, "he", md.Tracks[1].Language)
	assert.Equal(t, "de", md.Tracks[2].Language)
}
