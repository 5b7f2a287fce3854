package youtube

import (
	"fmt"
	"regexp"
)

// Thumbnail qualities served by img.youtube.com.
const (
	QualityMaxRes = "maxresdefault"
	QualityMedium = "mqdefault"
)

var idRe = regexp.MustCompile(`(?:watch\?v=|/videos/|embed/|youtu\.be/|/shorts/)([^#&?]*)`)

// ExtractID finds the video id in a YouTube watch, embed, shorts or short-link URL.
func ExtractID(url string) (string, bool) {
	m := idRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func ThumbnailURL(id, quality string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", id, quality)
}
