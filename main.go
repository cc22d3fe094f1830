// go_ytsummary is a YouTube transcript MCP server.
//
// Exposes one MCP tool: youtube_transcript.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/logging"
	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
	"github.com/anatolykoptev/go_ytsummary/internal/youtube"
	"github.com/anatolykoptev/go_ytsummary/internal/ytserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	log := logging.NewLogger(env.Str("LOG_LEVEL", "info"))
	slog.SetDefault(log)

	initEngine()

	slog.Info("starting go_ytsummary",
		slog.String("port", mcpPort),
	)

	yt := youtube.New(
		youtube.WithHTTPClient(engine.Cfg.HTTPClient),
		youtube.WithBrowserClient(engine.Cfg.BrowserClient),
		youtube.WithInterfaceLanguage(engine.Cfg.InterfaceLanguage),
		youtube.WithLogger(logging.WithComponent(log, "youtube")),
	)
	svc := transcript.NewService(yt,
		transcript.WithLogger(logging.WithComponent(log, "transcript")),
		transcript.WithMaxContentChars(engine.Cfg.MaxContentChars),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytsummary",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytsummary",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 0),
		InterfaceLanguage:    env.Str("YT_HL", "en"),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		RateLimit:            env.Float("YT_RATE_LIMIT", 5),
		RateBurst:            env.Int("YT_RATE_BURST", 10),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	webshareKey := env.Str("WEBSHARE_API_KEY", "")
	if webshareKey != "" {
		slog.Info("webshare proxy key configured", slog.String("key", logging.SanitizeToken(webshareKey)))
	}
	bc, err := engine.NewBrowserClient(15, webshareKey)
	if err != nil {
		slog.Error("stealth client init failed, watch pages fetched with plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 30*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
