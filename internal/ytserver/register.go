// Package ytserver exposes the transcript service as MCP tools.
package ytserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// RegisterTools registers all YouTube tools on the given MCP server: youtube_transcript.
func RegisterTools(server *mcp.Server, svc *transcript.Service) {
	registerTranscript(server, svc)
}
