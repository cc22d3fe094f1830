package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	FetchTimeout         time.Duration
	MaxContentChars      int    // 0 = no cap on returned transcript text
	InterfaceLanguage    string // hl param sent to YouTube
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RateLimit            float64 // outbound YouTube requests per second, 0 = unlimited
	RateBurst            int
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = watch page fetched with HTTPClient
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (youtube, transcript).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.InterfaceLanguage == "" {
		c.InterfaceLanguage = "en"
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.RateLimit, c.RateBurst)
}
