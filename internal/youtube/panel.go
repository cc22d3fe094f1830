package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// Transcript panel: POST /next → engagement panel token → POST /get_transcript.
// Serves tracks whose timedtext URL needs a PO token, since the panel is rendered
// server-side and needs none.

const (
	nextPath          = "/youtubei/v1/next"
	getTranscriptPath = "/youtubei/v1/get_transcript"
	ytWebVersion      = "2.20250222.10.00"
	maxPanelBody      = 3 * 1024 * 1024
)

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

var errNoPanel = errors.New("getTranscriptEndpoint not found in engagement panels")

// --- WEB client types (/next and /get_transcript endpoints) ---

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type panelMenuItem struct {
	Title        string `json:"title"`
	Selected     bool   `json:"selected"`
	Continuation struct {
		ReloadContinuationData struct {
			Continuation string `json:"continuation"`
		} `json:"reloadContinuationData"`
	} `json:"continuation"`
}

type panelSegment struct {
	TranscriptSegmentRenderer *struct {
		StartMs string   `json:"startMs"`
		EndMs   string   `json:"endMs"`
		Snippet textRuns `json:"snippet"`
	} `json:"transcriptSegmentRenderer"`
}

type getTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []panelSegment `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
							Footer struct {
								TranscriptFooterRenderer struct {
									LanguageMenu struct {
										SortFilterSubMenuRenderer struct {
											SubMenuItems []panelMenuItem `json:"subMenuItems"`
										} `json:"sortFilterSubMenuRenderer"`
									} `json:"languageMenu"`
								} `json:"transcriptFooterRenderer"`
							} `json:"footer"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

func (r *getTranscriptResp) segments() []panelSegment {
	var out []panelSegment
	for _, a := range r.Actions {
		if a.UpdateEngagementPanelAction == nil {
			continue
		}
		p := a.UpdateEngagementPanelAction.Content.TranscriptRenderer.Content.TranscriptSearchPanelRenderer
		out = append(out, p.Body.TranscriptSegmentListRenderer.InitialSegments...)
	}
	return out
}

func (r *getTranscriptResp) languages() []panelMenuItem {
	for _, a := range r.Actions {
		if a.UpdateEngagementPanelAction == nil {
			continue
		}
		p := a.UpdateEngagementPanelAction.Content.TranscriptRenderer.Content.TranscriptSearchPanelRenderer
		if items := p.Footer.TranscriptFooterRenderer.LanguageMenu.SortFilterSubMenuRenderer.SubMenuItems; len(items) > 0 {
			return items
		}
	}
	return nil
}

// switchTo returns the continuation for the menu entry titled name, "" when the entry is
// already selected. ok is false when the panel does not offer name at all.
func (r *getTranscriptResp) switchTo(name string) (params string, ok bool) {
	items := r.languages()
	if name == "" || len(items) == 0 {
		return "", true
	}
	for _, it := range items {
		if it.Title != name {
			continue
		}
		if it.Selected {
			return "", true
		}
		return it.Continuation.ReloadContinuationData.Continuation, true
	}
	return "", false
}

// srt renders the panel segments in the same SRT form timedTextToSRT produces.
func (r *getTranscriptResp) srt() string {
	segs := r.segments()
	cues := make([]cue, 0, len(segs))
	for _, s := range segs {
		if s.TranscriptSegmentRenderer == nil {
			continue
		}
		seg := s.TranscriptSegmentRenderer
		cues = append(cues, cue{start: millis(seg.StartMs), end: millis(seg.EndMs), text: seg.Snippet.String()})
	}
	return renderSRT(cues)
}

func extractTranscriptToken(data []byte) (string, error) {
	m := getTranscriptRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", errNoPanel
	}
	// /next carries the params URL-encoded; /get_transcript wants raw base64.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

func (c *Client) webContext(visitorData string) map[string]any {
	return map[string]any{
		"client": ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   visitorData,
			Hl:            c.hl,
			Gl:            "US",
		},
	}
}

// PanelTranscript fetches the transcript of videoID from the engagement panel as SRT.
// trackName is the caption track's display name ("English (auto-generated)"); when set,
// the panel is switched to that track or the call fails.
func (c *Client) PanelTranscript(ctx context.Context, videoID, trackName string) (string, error) {
	key := engine.CacheKey("panel", videoID, c.hl, trackName)
	if data, ok := engine.CacheGet(ctx, key); ok {
		return string(data), nil
	}

	engine.IncrPanelRequests()
	visitorData := generateVisitorData()

	nextData, err := c.postInnerTubeWEB(ctx, nextPath, map[string]any{
		"videoId": videoID,
		"context": c.webContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}
	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", err
	}

	resp, err := c.getTranscript(ctx, token, visitorData)
	if err != nil {
		return "", err
	}
	params, ok := resp.switchTo(trackName)
	if !ok {
		return "", fmt.Errorf("transcript panel has no %q track", trackName)
	}
	if params != "" {
		if resp, err = c.getTranscript(ctx, params, visitorData); err != nil {
			return "", err
		}
	}

	srt := resp.srt()
	if srt == "" {
		return "", errEmptyDocument
	}
	engine.CacheSet(ctx, key, []byte(srt))
	return srt, nil
}

func (c *Client) getTranscript(ctx context.Context, params, visitorData string) (*getTranscriptResp, error) {
	data, err := c.postInnerTubeWEB(ctx, getTranscriptPath, map[string]any{
		"params":  params,
		"context": c.webContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}
	var resp getTranscriptResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &resp, nil
}

// postInnerTubeWEB POSTs to an Innertube endpoint with WEB client headers.
func (c *Client) postInnerTubeWEB(ctx context.Context, path string, payload any, visitorData string) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		if err := engine.WaitTurn(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", ytWebVersion)
		req.Header.Set("X-Goog-Visitor-Id", visitorData)
		req.Header.Set("Origin", defaultBaseURL)
		req.Header.Set("Referer", defaultBaseURL+"/")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: innertube WEB: %w", transcript.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &engine.StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPanelBody))
}
