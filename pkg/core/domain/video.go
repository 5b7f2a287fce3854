package domain

// Video is one catalog entry: a clip reference plus the user's annotations.
type Video struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	VideoURL  string `json:"video_url"` // Web URL or file:// locator
	Hashtags  string `json:"hashtags"`  // Space separated, derived from Notes
	Notes     string `json:"notes"`
	IsStarred bool   `json:"is_starred"`
}

// IsNew reports whether the store has not assigned an ID yet.
func (v Video) IsNew() bool {
	return v.ID == 0
}

// Criteria narrows a catalog listing. Zero value means no filtering.
type Criteria struct {
	StarredOnly bool   `json:"starred_only"`
	Tag         string `json:"tag,omitempty"`
	Query       string `json:"query,omitempty"`
}

// TagCount is a hashtag suggestion with its usage count.
type TagCount struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Baseline bool   `json:"baseline"`
}
