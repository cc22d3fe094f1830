// Package youtube is the video-platform client: it resolves video metadata and caption
// tracks from YouTube and downloads caption documents as SRT.
//
// Metadata is resolved in two steps:
//
//	Primary:  watch page → ytInitialPlayerResponse  (works from most IPs)
//	Fallback: ANDROID Innertube /player              (age-gated pages, bot checks, missing tracks)
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// Video is the metadata and caption list of one video.
type Video struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Author        string  `json:"author"`
	LengthSeconds int     `json:"length_seconds"`
	Tracks        []Track `json:"tracks"`
}

// Track is one caption track as YouTube lists it.
type Track struct {
	Code    string `json:"code"` // "en", "en-US", "a.en"
	Name    string `json:"name"`
	Kind    string `json:"kind"` // "asr" = auto-generated
	BaseURL string `json:"base_url"`
}

// Client talks to YouTube. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	browser    *engine.BrowserClient
	baseURL    string
	hl         string
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (default engine.Cfg.HTTPClient).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithBrowserClient sets the Chrome-fingerprinted client used for watch pages; nil means plain HTTP.
func WithBrowserClient(bc *engine.BrowserClient) Option { return func(c *Client) { c.browser = bc } }

// WithBaseURL points the client at another host; used by tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithInterfaceLanguage sets the hl parameter sent to YouTube.
func WithInterfaceLanguage(hl string) Option { return func(c *Client) { c.hl = hl } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client configured from engine.Cfg, then opts.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: engine.Cfg.HTTPClient,
		browser:    engine.Cfg.BrowserClient,
		baseURL:    defaultBaseURL,
		hl:         engine.Cfg.InterfaceLanguage,
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.hl == "" {
		c.hl = "en"
	}
	return c
}

// Video returns metadata and caption tracks for videoID, served from cache when possible.
func (c *Client) Video(ctx context.Context, videoID string) (*Video, error) {
	key := engine.CacheKey("video", videoID, c.hl)
	if v, ok := engine.CacheLoadJSON[Video](ctx, key); ok {
		return &v, nil
	}

	engine.IncrMetadataRequests()
	var v *Video
	err := engine.TrackOperation(ctx, "youtube_metadata", func(ctx context.Context) error {
		var err error
		v, err = c.resolve(ctx, videoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	engine.CacheStoreJSON(ctx, key, *v)
	return v, nil
}

func (c *Client) resolve(ctx context.Context, videoID string) (*Video, error) {
	var page *Video
	var pageErr error

	pr, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		pageErr = err
	} else if perr := playability(videoID, pr); perr != nil {
		if perr.definitive() {
			return nil, perr
		}
		pageErr = perr
	} else {
		page = pr.toVideo(videoID)
		if len(page.Tracks) > 0 {
			return page, nil
		}
		pageErr = errors.New("no caption tracks in watch page")
	}
	c.log.Warn("youtube: watch page insufficient, trying android player",
		slog.String("id", videoID), slog.Any("err", pageErr))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", transcript.ErrNetwork, err)
	}

	pr, err = c.postPlayer(ctx, videoID)
	if err != nil {
		if page != nil {
			return page, nil
		}
		return nil, fmt.Errorf("%w (watch page: %v)", err, pageErr)
	}
	if perr := playability(videoID, pr); perr != nil {
		if page != nil {
			return page, nil
		}
		return nil, perr
	}

	player := pr.toVideo(videoID)
	if page != nil {
		page.Tracks = player.Tracks
		return page, nil
	}
	return player, nil
}
