// Package hashtag derives and manipulates the space separated hashtag field
// of a video from its free-text notes.
package hashtag

import (
	"regexp"
	"sort"
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

var tagRe = regexp.MustCompile(`#(\w+)`)

// Baseline tags are always suggested and cannot be deleted.
var Baseline = []string{"lindy", "charleston", "swing", "jive", "shag", "collegiate shag", "style", "clothes", "music"}

// Extract returns the lower-cased, de-duplicated #tokens of notes in order of
// first appearance, joined by single spaces.
func Extract(notes string) string {
	seen := make(map[string]bool)
	var tags []string
	for _, m := range tagRe.FindAllStringSubmatch(notes, -1) {
		tag := strings.ToLower(m[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return strings.Join(tags, " ")
}

// Split breaks a hashtag field into its tokens.
func Split(hashtags string) []string {
	return strings.Fields(hashtags)
}

// Remove drops every token equal to tag.
func Remove(hashtags, tag string) string {
	var kept []string
	for _, t := range Split(hashtags) {
		if t != tag {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// Contains is a case-insensitive substring match against the whole field.
// "swing" therefore also matches a video tagged "westswing".
func Contains(hashtags, tag string) bool {
	return strings.Contains(strings.ToLower(hashtags), strings.ToLower(tag))
}

// IsBaseline reports whether tag is one of the built-in suggestions.
func IsBaseline(tag string) bool {
	for _, b := range Baseline {
		if b == tag {
			return true
		}
	}
	return false
}

// Discover lists the baseline tags plus every tag used by videos, sorted,
// each with the number of videos whose hashtags contain it.
func Discover(videos []domain.Video) []domain.TagCount {
	names := make(map[string]bool)
	for _, b := range Baseline {
		names[b] = true
	}
	for _, v := range videos {
		for _, t := range Split(v.Hashtags) {
			names[t] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	out := make([]domain.TagCount, 0, len(sorted))
	for _, n := range sorted {
		count := 0
		for _, v := range videos {
			if Contains(v.Hashtags, n) {
				count++
			}
		}
		out = append(out, domain.TagCount{Name: n, Count: count, Baseline: IsBaseline(n)})
	}
	return out
}
