package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// YouTube Innertube API: low-level constants, types and the /player call.
// Higher-level fetch strategy lives in client.go.

const (
	defaultBaseURL   = "https://www.youtube.com"
	playerPath       = "/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// playerResp is the subset of a player response (Innertube or ytInitialPlayerResponse) we read.
type playerResp struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		ShortDescription string `json:"shortDescription"`
		Author           string `json:"author"`
		LengthSeconds    string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string   `json:"baseUrl"`
	LanguageCode string   `json:"languageCode"`
	Kind         string   `json:"kind"` // "asr" = auto-generated
	VssID        string   `json:"vssId"`
	Name         textRuns `json:"name"`
}

type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// status returns the playability status, "" when the response carried none.
func (p *playerResp) status() (string, string) {
	if p.PlayabilityStatus == nil {
		return "", ""
	}
	return p.PlayabilityStatus.Status, p.PlayabilityStatus.Reason
}

func (p *playerResp) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// toVideo flattens a playable response into a Video.
func (p *playerResp) toVideo(id string) *Video {
	v := &Video{ID: id}
	if d := p.VideoDetails; d != nil {
		v.Title = d.Title
		v.Description = d.ShortDescription
		v.Author = d.Author
		v.LengthSeconds, _ = strconv.Atoi(d.LengthSeconds)
	}
	for _, t := range p.tracks() {
		v.Tracks = append(v.Tracks, Track{
			Code:    trackCode(t),
			Name:    t.Name.String(),
			Kind:    t.Kind,
			BaseURL: t.BaseURL,
		})
	}
	return v
}

// trackCode derives the caption code from vssId the way pytube-style clients do:
// ".en" → "en", "a.en" → "a.en", ".en-US" → "en-US". Falls back to languageCode.
func trackCode(t captionTrack) string {
	if t.VssID != "" {
		return strings.TrimPrefix(t.VssID, ".")
	}
	if t.Kind == "asr" {
		return "a." + t.LanguageCode
	}
	return t.LanguageCode
}

// postPlayer POSTs an ANDROID /player request and decodes the response.
func (c *Client) postPlayer(ctx context.Context, videoID string) (*playerResp, error) {
	engine.IncrPlayerRequests()

	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                c.hl,
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		if err := engine.WaitTurn(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+playerPath+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: android player: %w", transcript.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android player: %w", &engine.StatusError{URL: c.baseURL + playerPath, StatusCode: resp.StatusCode})
	}

	var pr playerResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 3*1024*1024)).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &pr, nil
}
