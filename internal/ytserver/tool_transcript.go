package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsummary/internal/transcript"
)

// TranscriptInput is the youtube_transcript argument object.
type TranscriptInput struct {
	URL        string `json:"url" jsonschema:"YouTube video URL: watch, youtu.be, shorts, embed or live link"`
	TargetLang string `json:"target_lang,omitempty" jsonschema:"Preferred caption language code (e.g. en, es, pt-BR). Default en. Falls back to the most widely spoken available language"`
}

// TranscriptOutput is the flat wire form of transcript.Result.
// Status is "success" or "failure"; Kind and Reason are set only on failure.
// Title, Description and Content are always present, empty on failure.
type TranscriptOutput struct {
	Status            string   `json:"status"`
	VideoID           string   `json:"video_id,omitempty"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Author            string   `json:"author,omitempty"`
	LengthSeconds     int      `json:"length_seconds,omitempty"`
	Content           string   `json:"content"`
	Language          string   `json:"language,omitempty"`
	Origin            string   `json:"origin,omitempty"`
	Selection         string   `json:"selection,omitempty"`
	AvailableCaptions []string `json:"available_captions,omitempty"`
	Truncated         bool     `json:"truncated,omitempty"`
	Kind              string   `json:"kind,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

func registerTranscript(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Get the title, description and full plain-text transcript of a YouTube video. Picks the best caption track for target_lang (official > auto-generated > machine-translated), falling back to other languages when the requested one is missing. Failures come back as status=failure with a kind and a readable reason.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		return nil, toOutput(svc.Run(ctx, input.URL, input.TargetLang)), nil
	})
}

func toOutput(res transcript.Result) TranscriptOutput {
	switch r := res.(type) {
	case *transcript.Success:
		return TranscriptOutput{
			Status:            statusSuccess,
			VideoID:           r.VideoID,
			Title:             r.Title,
			Description:       r.Description,
			Author:            r.Author,
			LengthSeconds:     r.LengthSeconds,
			Content:           r.Content,
			Language:          r.Language,
			Origin:            string(r.Origin),
			Selection:         string(r.Stage),
			AvailableCaptions: r.AvailableCaptions,
			Truncated:         r.Truncated,
		}
	case *transcript.Failure:
		return TranscriptOutput{Status: statusFailure, Kind: string(r.Kind), Reason: r.Reason}
	default:
		return TranscriptOutput{
			Status: statusFailure,
			Kind:   string(transcript.KindUnexpectedError),
			Reason: transcript.KindUnexpectedError.Message(),
		}
	}
}
