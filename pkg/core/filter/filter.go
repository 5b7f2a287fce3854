package filter

import (
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/hashtag"
)

// Apply returns the videos matching every active predicate in c, in their
// original order.
func Apply(videos []domain.Video, c domain.Criteria) []domain.Video {
	out := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if Match(v, c) {
			out = append(out, v)
		}
	}
	return out
}

// Match reports whether a single video satisfies c.
func Match(v domain.Video, c domain.Criteria) bool {
	if c.StarredOnly && !v.IsStarred {
		return false
	}
	if c.Tag != "" && !hashtag.Contains(v.Hashtags, c.Tag) {
		return false
	}
	if c.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(c.Query)) {
		return false
	}
	return true
}
