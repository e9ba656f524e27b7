package feed

import (
	"regexp"
	"strings"
)

// SourceKind identifies where a reel's video is hosted.
type SourceKind string

const (
	SourceLocal     SourceKind = "local"
	SourceTikTok    SourceKind = "tiktok"
	SourceYouTube   SourceKind = "youtube"
	SourceInstagram SourceKind = "instagram"
)

// Source describes how a client renders a reel's video URL.
type Source struct {
	Kind        SourceKind `json:"kind"`
	URL         string     `json:"url"`
	EmbedURL    string     `json:"embed_url,omitempty"`
	OutboundURL string     `json:"outbound_url,omitempty"`
}

// Sequenced reports whether the player drives playback for this source.
// Embedded players manage their own playback.
func (s Source) Sequenced() bool {
	return s.Kind == SourceLocal
}

var youTubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
}

// Classify maps a stored video URL to its rendering source.
func Classify(raw string) Source {
	url := strings.TrimSpace(raw)
	switch {
	case strings.Contains(url, "tiktok.com"):
		return Source{
			Kind:        SourceTikTok,
			URL:         url,
			EmbedURL:    strings.Replace(url, "/video/", "/embed/", 1),
			OutboundURL: url,
		}
	case strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be"):
		src := Source{Kind: SourceYouTube, URL: url, OutboundURL: url}
		if id := YouTubeID(url); id != "" {
			src.EmbedURL = "https://www.youtube.com/embed/" + id + "?autoplay=1&mute=1&loop=1&playlist=" + id
		}
		return src
	case strings.Contains(url, "instagram.com"):
		return Source{
			Kind:        SourceInstagram,
			URL:         url,
			EmbedURL:    strings.TrimRight(url, "/") + "/embed",
			OutboundURL: url,
		}
	}
	return Source{Kind: SourceLocal, URL: url}
}

// YouTubeID extracts the video id from watch, short and embed URLs.
func YouTubeID(url string) string {
	for _, re := range youTubeIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}
