package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
)

// Service runs the whole request: parse → list → select → fetch → normalize → Result.
type Service struct {
	platform Platform
	lister   *Lister
	log      *slog.Logger
	maxChars int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMaxContentChars caps the transcript returned in Success.Content (0 = no cap).
func WithMaxContentChars(n int) Option {
	return func(s *Service) { s.maxChars = n }
}

// NewService builds a Service on top of p.
func NewService(p Platform, opts ...Option) *Service {
	s := &Service{platform: p, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.lister = NewLister(p, s.log)
	return s
}

// SelectAndRender picks the best track in catalog for targetLang, fetches its payload and
// returns it as plain text. Errors are *Error with kind NoCaptionsAvailable,
// CaptionFetchError, EmptyTranscript or NetworkError (cancelled before the fetch).
func (s *Service) SelectAndRender(ctx context.Context, catalog TrackCatalog, targetLang string) (Selection, string, error) {
	sel, err := Select(catalog, targetLang)
	if err != nil {
		return Selection{}, "", newError(KindNoCaptionsAvailable, "", err)
	}
	if err := ctx.Err(); err != nil {
		return sel, "", newError(KindNetworkError, "", err)
	}

	payload, err := s.platform.CaptionPayload(ctx, sel.Track)
	if err != nil {
		return sel, "", newError(KindCaptionFetchError, "", fmt.Errorf("track %s: %w", sel.Track.Code, err))
	}

	text := Normalize(payload)
	if text == "" {
		return sel, "", errorf(KindEmptyTranscript, "", "track %s has no text after normalization", sel.Track.Code)
	}
	return sel, text, nil
}

// Run handles one tool invocation. It never returns a Go error and never panics:
// every failure, including a panicking Platform, comes back as *Failure.
func (s *Service) Run(ctx context.Context, rawURL, targetLang string) (res Result) {
	engine.IncrToolCalls()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("transcript: recovered panic", slog.Any("panic", r), slog.String("url", rawURL))
			res = &Failure{Kind: KindUnexpectedError, Reason: fmt.Sprintf("%s: %v", KindUnexpectedError.Message(), r)}
		}
		switch r := res.(type) {
		case *Success:
			engine.RecordSuccess(len(r.Content))
			s.log.Info("transcript ready",
				slog.String("video_id", r.VideoID),
				slog.String("track", r.Language),
				slog.String("stage", string(r.Stage)),
				slog.Int("chars", utf8.RuneCountInString(r.Content)),
				slog.String("preview", engine.TruncateAtWord(r.Content, 80)),
				slog.Duration("elapsed", time.Since(start)))
		case *Failure:
			engine.RecordFailure(string(r.Kind))
			s.log.Warn("transcript failed",
				slog.String("url", rawURL),
				slog.String("kind", string(r.Kind)),
				slog.String("reason", r.Reason),
				slog.Duration("elapsed", time.Since(start)))
		}
	}()

	// Failures are logged by the deferred block; TrackOperation only reports slow ones.
	_ = engine.TrackOperation(ctx, "youtube_transcript", func(ctx context.Context) error {
		res = s.run(ctx, rawURL, targetLang)
		if f, ok := res.(*Failure); ok {
			return f
		}
		return nil
	})
	return res
}

func (s *Service) run(ctx context.Context, rawURL, targetLang string) Result {
	lang := strings.TrimSpace(targetLang)
	if lang == "" {
		lang = DefaultLanguage
	}
	if !ValidLanguageCode(lang) {
		return failureFrom(errorf(KindInvalidInput, "", "malformed language code %q", targetLang))
	}

	ref, err := ParseVideoRef(rawURL)
	if err != nil {
		return failureFrom(newError(KindInvalidInput, "", err))
	}
	if err := ctx.Err(); err != nil {
		return failureFrom(newError(KindNetworkError, ref.ID, err))
	}

	md, err := s.lister.Fetch(ctx, ref)
	if err != nil {
		return failureFrom(err)
	}

	sel, text, err := s.SelectAndRender(ctx, md.Tracks, lang)
	if err != nil {
		return failureFrom(err)
	}

	truncated := false
	if s.maxChars > 0 && utf8.RuneCountInString(text) > s.maxChars {
		text = engine.TruncateRunes(text, s.maxChars, "...")
		truncated = true
	}

	return &Success{
		VideoID:           md.VideoID,
		Title:             md.Title,
		Description:       md.Description,
		Author:            md.Author,
		LengthSeconds:     md.LengthSeconds,
		Content:           text,
		Language:          sel.Track.Code,
		Origin:            sel.Track.Origin,
		Stage:             sel.Stage,
		AvailableCaptions: md.Tracks.Codes(),
		Truncated:         truncated,
	}
}
