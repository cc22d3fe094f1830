package transcript

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// VideoRef identifies one video by its platform ID.
type VideoRef struct {
	ID  string
	URL string // canonical watch URL
}

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// supportedHosts are the hostnames a video URL may point at.
var supportedHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
	"youtu.be":                 true,
}

// pathPrefixes carry the ID as the next path segment: /shorts/ID, /embed/ID, ...
var pathPrefixes = []string{"shorts", "embed", "live", "v", "e"}

// ParseVideoRef resolves a YouTube URL to a VideoRef without touching the network.
// Accepted forms:
//
//	https://www.youtube.com/watch?v=ID
//	https://youtu.be/ID
//	https://www.youtube.com/{shorts,embed,live,v,e}/ID
//	youtube.com/watch?v=ID (scheme optional)
func ParseVideoRef(raw string) (VideoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoRef{}, errors.New("url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return VideoRef{}, fmt.Errorf("unparseable url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return VideoRef{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if !supportedHosts[host] {
		return VideoRef{}, fmt.Errorf("unsupported host %q", host)
	}

	id := videoIDFromURL(host, u)
	if !videoIDRE.MatchString(id) {
		return VideoRef{}, fmt.Errorf("no video id in %q", raw)
	}
	return VideoRef{ID: id, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

func videoIDFromURL(host string, u *url.URL) string {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if host == "youtu.be" {
		return segments[0]
	}
	if segments[0] == "watch" {
		return u.Query().Get("v")
	}
	if len(segments) >= 2 {
		for _, p := range pathPrefixes {
			if segments[0] == p {
				return segments[1]
			}
		}
	}
	return ""
}
