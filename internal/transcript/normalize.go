package transcript

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// timestampRE matches an SRT/WebVTT cue timing line, with optional trailing cue settings.
var timestampRE = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{3}`)

var (
	sequenceRE = regexp.MustCompile(`^\d+$`)
	assTagRE   = regexp.MustCompile(`\{\\[^}]*\}`)
)

// Normalize converts a timed-caption payload into continuous plain text.
//
// Sequence numbers, timing lines and the WEBVTT header of a timed payload are dropped;
// tags and entities are removed from the remaining lines, which are joined with single
// spaces in payload order.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(payload string) string {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")
	timed := hasTiming(lines)

	var parts []string
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case timed && i == 0 && strings.HasPrefix(line, "WEBVTT"):
			continue
		case timestampRE.MatchString(line):
			continue
		case sequenceRE.MatchString(line) && nextIsTimestamp(lines, i):
			continue
		}
		text := stripMarkup(line)
		if text == "" || timestampRE.MatchString(text) {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func hasTiming(lines []string) bool {
	for _, l := range lines {
		if timestampRE.MatchString(strings.TrimSpace(l)) {
			return true
		}
	}
	return false
}

// nextIsTimestamp reports whether the next non-blank line after i is a cue timing line,
// which is what makes a bare number a sequence counter rather than spoken text.
func nextIsTimestamp(lines []string, i int) bool {
	for _, l := range lines[i+1:] {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		return timestampRE.MatchString(l)
	}
	return false
}

// stripMarkup removes HTML-like tags, ASS override blocks and character entities,
// repeating until the text stops changing so decoded entities cannot smuggle tags through.
// Every pass that changes the text shortens it, so the loop ends.
func stripMarkup(s string) string {
	for {
		next := textContent(assTagRE.ReplaceAllString(s, ""))
		if next == s {
			break
		}
		shorter := len(next) < len(s)
		s = next
		if !shorter {
			break
		}
	}
	return strings.TrimSpace(s)
}

// textContent returns the concatenated, entity-decoded text tokens of s.
func textContent(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return sb.String()
			}
			return s
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteByte(' ')
			}
		}
	}
}
