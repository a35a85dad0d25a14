package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// pathPrefixes are the youtube.com paths that carry the id as the next segment.
var pathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/"}

// ExtractYouTubeID returns the video id of a watch, embed, shorts, live or
// youtu.be URL. Labels store it next to the source URL.
func ExtractYouTubeID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	host := strings.ToLower(u.Host)

	if strings.Contains(host, "youtu.be") {
		if id := firstSegment(strings.TrimPrefix(u.Path, "/")); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL")
	}

	if strings.Contains(host, "youtube.com") {
		if strings.HasPrefix(u.Path, "/watch") {
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				if id := firstSegment(strings.TrimPrefix(u.Path, prefix)); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", youtubeURL)
}

func firstSegment(p string) string {
	if idx := strings.IndexAny(p, "/?"); idx != -1 {
		p = p[:idx]
	}
	return p
}

func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}
