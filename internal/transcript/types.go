// Package transcript turns a YouTube URL into the video's title, description and plain-text
// transcript: it lists caption tracks through a Platform, picks the best track for the
// requested language, normalizes the timed captions and maps every failure to a closed
// set of kinds.
package transcript

import "context"

// Origin is the quality tier of a caption track.
type Origin string

const (
	OriginOfficial          Origin = "official"
	OriginAutoGenerated     Origin = "auto_generated"
	OriginMachineTranslated Origin = "machine_translated"
)

// CaptionTrack is one subtitle stream as listed by the platform.
type CaptionTrack struct {
	Code     string `json:"code"`     // raw platform code: "en", "en-US", "a.en"
	Language string `json:"language"` // language key, see BaseLanguage
	Name     string `json:"name,omitempty"`
	Origin   Origin `json:"origin"`
	Handle   string `json:"-"` // opaque reference passed back to Platform.CaptionPayload
}

// TrackCatalog is the platform-ordered list of tracks for one video.
// The order says nothing about quality.
type TrackCatalog []CaptionTrack

// Codes returns the raw codes of all tracks in catalog order.
func (c TrackCatalog) Codes() []string {
	codes := make([]string, len(c))
	for i, t := range c {
		codes[i] = t.Code
	}
	return codes
}

// Metadata is what the Lister returns for one video.
type Metadata struct {
	VideoID       string
	Title         string
	Description   string
	Author        string
	LengthSeconds int
	Tracks        TrackCatalog
}

// Platform is the video-platform client the core delegates all network access to.
//
// Metadata errors should wrap ErrVideoUnavailable, ErrNoCaptions or ErrNetwork where the
// cause is known; anything else is reported as UnexpectedError.
type Platform interface {
	Metadata(ctx context.Context, ref VideoRef) (Metadata, error)
	CaptionPayload(ctx context.Context, track CaptionTrack) (string, error)
}
