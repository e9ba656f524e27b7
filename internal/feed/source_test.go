package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Source
	}{
		{
			name: "tiktok",
			url:  "https://www.tiktok.com/@stefanmarian66/video/7301",
			want: Source{Kind: SourceTikTok, URL: "https://www.tiktok.com/@stefanmarian66/video/7301", EmbedURL: "https://www.tiktok.com/@stefanmarian66/embed/7301", OutboundURL: "https://www.tiktok.com/@stefanmarian66/video/7301"},
		},
		{
			name: "youtube watch",
			url:  "https://www.youtube.com/watch?v=abc123&t=4",
			want: Source{Kind: SourceYouTube, URL: "https://www.youtube.com/watch?v=abc123&t=4", EmbedURL: "https://www.youtube.com/embed/abc123?autoplay=1&mute=1&loop=1&playlist=abc123", OutboundURL: "https://www.youtube.com/watch?v=abc123&t=4"},
		},
		{
			name: "youtu.be",
			url:  "https://youtu.be/xyz?si=1",
			want: Source{Kind: SourceYouTube, URL: "https://youtu.be/xyz?si=1", EmbedURL: "https://www.youtube.com/embed/xyz?autoplay=1&mute=1&loop=1&playlist=xyz", OutboundURL: "https://youtu.be/xyz?si=1"},
		},
		{
			name: "instagram without trailing slash",
			url:  "https://www.instagram.com/reel/C1",
			want: Source{Kind: SourceInstagram, URL: "https://www.instagram.com/reel/C1", EmbedURL: "https://www.instagram.com/reel/C1/embed", OutboundURL: "https://www.instagram.com/reel/C1"},
		},
		{
			name: "local",
			url:  "https://storage.googleapis.com/ssm-media/media/video/1/reel.mp4",
			want: Source{Kind: SourceLocal, URL: "https://storage.googleapis.com/ssm-media/media/video/1/reel.mp4"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.url)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want.Kind == SourceLocal, got.Sequenced())
		})
	}
}

func TestYouTubeIDEmbedForm(t *testing.T) {
	assert.Equal(t, "q1w2", YouTubeID("https://www.youtube.com/embed/q1w2?rel=0"))
	assert.Empty(t, YouTubeID("https://www.youtube.com/channel/foo"))
}
