package transcript

import (
	"context"
	"errors"
	"log/slog"
)

// Lister fetches a video's metadata and caption catalog through a Platform.
type Lister struct {
	platform Platform
	log      *slog.Logger
}

// NewLister returns a Lister backed by p.
func NewLister(p Platform, log *slog.Logger) *Lister {
	if log == nil {
		log = slog.Default()
	}
	return &Lister{platform: p, log: log}
}

// Fetch returns title, description and the caption catalog for ref.
// Errors are *Error with kind VideoUnavailable, NetworkError, NoCaptionsAvailable
// or UnexpectedError.
func (l *Lister) Fetch(ctx context.Context, ref VideoRef) (Metadata, error) {
	md, err := l.platform.Metadata(ctx, ref)
	if err != nil {
		var classified *Error
		if errors.As(err, &classified) {
			return Metadata{}, classified
		}
		kind := classifyPlatformError(err)
		l.log.Warn("metadata fetch failed",
			slog.String("video_id", ref.ID),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
		return Metadata{}, newError(kind, ref.ID, err)
	}

	if md.VideoID == "" {
		md.VideoID = ref.ID
	}
	for i := range md.Tracks {
		if md.Tracks[i].Language == "" {
			md.Tracks[i].Language = BaseLanguage(md.Tracks[i].Code)
		}
	}
	if len(md.Tracks) == 0 {
		return Metadata{}, errorf(KindNoCaptionsAvailable, ref.ID, "video %s exposes no caption tracks", ref.ID)
	}

	l.log.Debug("caption catalog listed",
		slog.String("video_id", md.VideoID),
		slog.Any("codes", md.Tracks.Codes()))
	return md, nil
}
