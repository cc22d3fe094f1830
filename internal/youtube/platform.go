package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

var _ transcript.Platform = (*Client)(nil)

// Metadata implements transcript.Platform. Tracks that only a browser can download
// are left out of the catalog unless nothing else is listed; those are then served
// through the transcript panel.
func (c *Client) Metadata(ctx context.Context, ref transcript.VideoRef) (transcript.Metadata, error) {
	v, err := c.Video(ctx, ref.ID)
	if err != nil {
		return transcript.Metadata{}, err
	}

	md := transcript.Metadata{
		VideoID:       v.ID,
		Title:         v.Title,
		Description:   v.Description,
		Author:        v.Author,
		LengthSeconds: v.LengthSeconds,
	}
	var blocked transcript.TrackCatalog
	for _, t := range v.Tracks {
		ct := transcript.CaptionTrack{
			Code:   t.Code,
			Name:   t.Name,
			Origin: trackOrigin(t),
			Handle: t.BaseURL,
		}
		if needsPoToken(t.BaseURL) {
			blocked = append(blocked, ct)
			continue
		}
		md.Tracks = append(md.Tracks, ct)
	}
	if len(md.Tracks) == 0 && len(blocked) > 0 {
		c.log.Info("youtube: every track needs a PO token, using transcript panel",
			slog.String("id", v.ID), slog.Int("tracks", len(blocked)))
		md.Tracks = blocked
	}
	return md, nil
}

// CaptionPayload implements transcript.Platform. PO-token tracks go through the
// transcript panel of the video named in their timedtext URL.
func (c *Client) CaptionPayload(ctx context.Context, track transcript.CaptionTrack) (string, error) {
	if !needsPoToken(track.Handle) {
		return c.Captions(ctx, track.Handle)
	}
	u, err := url.Parse(track.Handle)
	if err != nil || u.Query().Get("v") == "" {
		return "", ErrPoTokenRequired
	}
	srt, err := c.PanelTranscript(ctx, u.Query().Get("v"), track.Name)
	if err != nil {
		return "", fmt.Errorf("%w: transcript panel: %w", ErrPoTokenRequired, err)
	}
	return srt, nil
}

// trackOrigin: "asr" kind or an "a." vssId is speech recognition, a tlang parameter is
// YouTube's on-the-fly translation, everything else was uploaded by a person.
func trackOrigin(t Track) transcript.Origin {
	switch {
	case t.Kind == "asr" || strings.HasPrefix(t.Code, "a."):
		return transcript.OriginAutoGenerated
	case strings.Contains(t.BaseURL, "tlang="):
		return transcript.OriginMachineTranslated
	default:
		return transcript.OriginOfficial
	}
}
