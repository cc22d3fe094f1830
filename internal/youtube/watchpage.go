package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

// maxWatchPage caps the watch page body; real pages are ~1-2 MB.
const maxWatchPage = 8 * 1024 * 1024

// fetchWatchPage downloads /watch?v=ID and decodes the embedded ytInitialPlayerResponse.
func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (*playerResp, error) {
	engine.IncrWatchPageRequests()

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("hl", c.hl)
	q.Set("bpctr", "9999999999")
	q.Set("has_verified", "1")
	body, err := c.getPage(ctx, c.baseURL+"/watch?"+q.Encode())
	if err != nil {
		return nil, err
	}

	pr, err := parseWatchPage(body)
	if err != nil {
		c.log.Debug("youtube: watch page parse failed", slog.String("id", videoID), slog.Any("err", err))
		return nil, err
	}
	return pr, nil
}

// getPage fetches an HTML page, through the stealth browser client when one is configured.
func (c *Client) getPage(ctx context.Context, pageURL string) ([]byte, error) {
	if c.browser != nil {
		headers := engine.ChromeHeaders()
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
		headers["accept-language"] = c.hl + ",en;q=0.8"

		data, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
			if err := engine.WaitTurn(ctx); err != nil {
				return nil, err
			}
			d, _, status, err := c.browser.Do(http.MethodGet, pageURL, headers, nil)
			if err != nil {
				return nil, err
			}
			if status != http.StatusOK {
				return nil, &engine.StatusError{URL: pageURL, StatusCode: status}
			}
			return d, nil
		})
		if err != nil {
			var se *engine.StatusError
			if errors.As(err, &se) {
				return nil, fmt.Errorf("watch page: %w", err)
			}
			return nil, fmt.Errorf("%w: watch page: %w", transcript.ErrNetwork, err)
		}
		return data, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		if err := engine.WaitTurn(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		req.Header.Set("Accept-Language", c.hl+",en;q=0.8")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: watch page: %w", transcript.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: %w", &engine.StatusError{URL: pageURL, StatusCode: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPage))
	if err != nil {
		return nil, fmt.Errorf("%w: read watch page: %w", transcript.ErrNetwork, err)
	}
	return body, nil
}

// parseWatchPage finds the <script> assigning ytInitialPlayerResponse and decodes it.
func parseWatchPage(body []byte) (*playerResp, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSON(text[idx+len(playerResponseMarker):])
		return raw == nil
	})
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	var pr playerResp
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &pr, nil
}

// extractJSON returns the balanced {...} object at the start of s (after optional spaces),
// or nil when s does not begin with one.
func extractJSON(s string) []byte {
	s = strings.TrimLeft(s, " \t\n")
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(s[:i+1])
			}
		}
	}
	return nil
}
