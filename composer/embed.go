package composer

import (
	"net/url"
	"regexp"
	"strings"
)

// Provider names double as the mediaType reported with media_play events.
const (
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
	ProviderLoom    = "loom"
	ProviderMiro    = "miro"
	ProviderNative  = "video"
)

var vimeoID = regexp.MustCompile(`vimeo\.com/(\d+)`)

// Embed describes how a media URL is rendered. Native embeds play URL in a
// video element; the rest load URL in an iframe.
type Embed struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Native   bool   `json:"native"`
}

// ClassifyMedia picks the provider by substring and rewrites the URL into its
// embeddable form. Unrecognised URLs are played natively.
func ClassifyMedia(mediaURL string) Embed {
	switch {
	case strings.Contains(mediaURL, "youtube.com") || strings.Contains(mediaURL, "youtu.be"):
		return Embed{Provider: ProviderYouTube, URL: YouTubeEmbedURL(mediaURL)}
	case strings.Contains(mediaURL, "vimeo.com"):
		return Embed{Provider: ProviderVimeo, URL: VimeoEmbedURL(mediaURL)}
	case strings.Contains(mediaURL, "loom.com"):
		return Embed{Provider: ProviderLoom, URL: LoomEmbedURL(mediaURL)}
	case strings.Contains(mediaURL, "miro.com"):
		return Embed{Provider: ProviderMiro, URL: MiroEmbedURL(mediaURL)}
	default:
		return Embed{Provider: ProviderNative, URL: mediaURL, Native: true}
	}
}

// YouTubeEmbedURL handles watch?v=, youtu.be/ and /embed/ forms. When no id
// can be found the id segment is left empty.
func YouTubeEmbedURL(raw string) string {
	var id string
	switch {
	case strings.Contains(raw, "youtube.com/watch"):
		if u, err := url.Parse(raw); err == nil {
			id = u.Query().Get("v")
		}
	case strings.Contains(raw, "youtu.be/"):
		id = segmentAfter(raw, "youtu.be/")
	case strings.Contains(raw, "youtube.com/embed/"):
		id = segmentAfter(raw, "youtube.com/embed/")
	}
	return "https://www.youtube.com/embed/" + id
}

func VimeoEmbedURL(raw string) string {
	var id string
	if m := vimeoID.FindStringSubmatch(raw); m != nil {
		id = m[1]
	}
	return "https://player.vimeo.com/video/" + id
}

func LoomEmbedURL(raw string) string {
	return strings.Replace(raw, "/share/", "/embed/", 1)
}

func MiroEmbedURL(raw string) string {
	return strings.Replace(raw, "/board/", "/live-embed/", 1)
}

// segmentAfter returns what follows marker up to the query string.
func segmentAfter(raw, marker string) string {
	_, rest, _ := strings.Cut(raw, marker)
	id, _, _ := strings.Cut(rest, "?")
	return id
}
