package playback

import (
	"net/url"
	"path"
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/backup"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/youtube"
)

// SeekStep is the jump applied by the rewind and forward controls, in seconds.
const SeekStep = 10

// Speeds lists the playback rates both players support.
var Speeds = []float64{0.25, 0.5, 0.75, 1.0}

func ValidSpeed(s float64) bool {
	for _, v := range Speeds {
		if v == s {
			return true
		}
	}
	return false
}

// Seek moves position by delta seconds without going below zero.
func Seek(position, delta float64) float64 {
	if p := position + delta; p > 0 {
		return p
	}
	return 0
}

// Describe picks the player for v. Local files are exposed under mediaBase.
func Describe(v domain.Video, mediaBase string) domain.Playback {
	pb := domain.Playback{Speeds: Speeds, Speed: 1.0}

	if id, ok := youtube.ExtractID(v.VideoURL); ok {
		pb.Kind = domain.PlaybackYouTube
		pb.YouTubeID = id
		pb.ThumbnailURL = youtube.ThumbnailURL(id, youtube.QualityMaxRes)
		return pb
	}

	if p, ok := backup.LocalPath(v.VideoURL); ok {
		pb.Kind = domain.PlaybackLocal
		pb.MediaURL = strings.TrimSuffix(mediaBase, "/") + "/" + url.PathEscape(path.Base(p))
		return pb
	}

	pb.Kind = domain.PlaybackRemote
	pb.MediaURL = v.VideoURL
	return pb
}

// Thumbnail returns the list-row image for YouTube videos and "" otherwise.
func Thumbnail(v domain.Video) string {
	id, ok := youtube.ExtractID(v.VideoURL)
	if !ok {
		return ""
	}
	return youtube.ThumbnailURL(id, youtube.QualityMedium)
}
