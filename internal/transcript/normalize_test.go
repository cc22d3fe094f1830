package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, payload, want string
	}{
		{
			name:    "srt blocks",
			payload: "1\n00:00:01,000 --> 00:00:02,500\nHello there\n\n2\n00:00:02,500 --> 00:00:04,000\nGeneral Kenobi\n",
			want:    "Hello there General Kenobi",
		},
		{
			name:    "multi-line cue and crlf",
			payload: "1\r\n00:00:01,000 --> 00:00:02,000\r\nfirst line\r\nsecond line\r\n\r\n",
			want:    "first line second line",
		},
		{
			name:    "markup and entities",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n<i>it&#39;s</i> <font color=\"#fff\">fine</font> &amp; <b>good</b>\n",
			want:    "it's fine & good",
		},
		{
			name:    "ass override blocks",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n{\\an8}{\\i1}top text\n",
			want:    "top text",
		},
		{
			name:    "double-escaped tag does not survive",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n&lt;i&gt;hi&lt;/i&gt;\n",
			want:    "hi",
		},
		{
			name:    "br becomes space",
			payload: "1\n00:00:01,000 --> 00:00:02,000\none<br/>two\n",
			want:    "one two",
		},
		{
			name:    "spoken numbers are kept",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n42\n\n2\n00:00:02,000 --> 00:00:03,000\nis the answer\n",
			want:    "42 is the answer",
		},
		{
			name:    "webvtt",
			payload: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000 align:start position:0%\nhello\n\n00:00:02.000 --> 00:00:03.000\nworld\n",
			want:    "hello world",
		},
		{
			name:    "whitespace collapses",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n   lots \t of   space  \n",
			want:    "lots of space",
		},
		{
			name:    "only markup is empty",
			payload: "1\n00:00:01,000 --> 00:00:02,000\n<i></i>\n\n2\n00:00:02,000 --> 00:00:03,000\n   \n",
			want:    "",
		},
		{name: "empty", payload: "", want: ""},
		{name: "plain text passes through", payload: "already plain text", want: "already plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.payload)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "not idempotent")
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"WEBVTT",
		"WEBVTT is a format",
		"12",
		"00:00:01,000 --> 00:00:02,000",
		"&amp;lt;b&amp;gt;x",
		"a <b>b</b> {\\an8}c",
		"1\n00:00:01,000 --> 00:00:02,000\n&lt;00:00:01,000 --&gt; 00:00:02,000&gt;\n",
		"5 &lt; 6 and 7 &gt; 3",
		"tom &amp; jerry &amp;amp; co",
		"&#123;\\an8&#125;hidden",
		"x &amp;amp;amp;amp;amp;lt;b&amp;amp;amp;amp;amp;gt;y",
		strings.Repeat("&amp;", 12) + "lt;i&gt;deep",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeDeeplyEscapedMarkup(t *testing.T) {
	assert.Equal(t, "x y", Normalize("x &amp;amp;amp;amp;amp;lt;b&amp;amp;amp;amp;amp;gt;y"))
}
