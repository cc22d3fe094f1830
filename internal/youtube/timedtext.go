package youtube

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
)

const timedTextAccept = "text/xml,application/xml;q=0.9,*/*;q=0.8"

// timedText covers both documents YouTube serves from /api/timedtext:
// format 1 (<transcript><text start dur>) and srv3 (<timedtext><body><p t d>).
type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
	Paras []struct {
		T     string `xml:"t,attr"`
		D     string `xml:"d,attr"`
		Inner string `xml:",innerxml"`
	} `xml:"body>p"`
}

type cue struct {
	start, end time.Duration
	text       string
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// Captions downloads the caption document at baseURL and returns it as SRT.
func (c *Client) Captions(ctx context.Context, baseURL string) (string, error) {
	if needsPoToken(baseURL) {
		return "", ErrPoTokenRequired
	}

	key := engine.CacheKey("captions", baseURL)
	if data, ok := engine.CacheGet(ctx, key); ok {
		return string(data), nil
	}

	engine.IncrCaptionRequests()
	body, err := engine.FetchWithRetry(ctx, c.httpClient, baseURL, timedTextAccept)
	if err != nil {
		engine.IncrCaptionErrors()
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	srt, err := timedTextToSRT(body)
	if err != nil {
		engine.IncrCaptionErrors()
		return "", err
	}
	engine.CacheSet(ctx, key, []byte(srt))
	return srt, nil
}

// timedTextToSRT converts a timedtext XML document into numbered SRT blocks.
// Cues without text are skipped; a document with no cues yields "".
func timedTextToSRT(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", errEmptyDocument
	}

	var tt timedText
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	cues := make([]cue, 0, len(tt.Texts)+len(tt.Paras))
	for _, t := range tt.Texts {
		start := seconds(t.Start)
		cues = append(cues, cue{start: start, end: start + seconds(t.Dur), text: t.Text})
	}
	for _, p := range tt.Paras {
		start := millis(p.T)
		cues = append(cues, cue{start: start, end: start + millis(p.D), text: p.Inner})
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].start < cues[j].start })

	return renderSRT(cues), nil
}

func renderSRT(cues []cue) string {
	var sb strings.Builder
	n := 0
	for _, c := range cues {
		text := strings.TrimSpace(c.text)
		if text == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", n, srtTime(c.start), srtTime(c.end), text)
	}
	return sb.String()
}

// srtTime formats d as HH:MM:SS,mmm.
func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

func seconds(s string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func millis(s string) time.Duration {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}
