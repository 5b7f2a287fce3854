package domain

type PlaybackKind string

const (
	PlaybackYouTube PlaybackKind = "youtube"
	PlaybackLocal   PlaybackKind = "local"
	PlaybackRemote  PlaybackKind = "remote"
)

// Playback describes how a client should play a video.
type Playback struct {
	Kind         PlaybackKind `json:"kind"`
	YouTubeID    string       `json:"youtube_id,omitempty"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	MediaURL     string       `json:"media_url,omitempty"`
	Speeds       []float64    `json:"speeds"`
	Speed        float64      `json:"speed"`
	Position     *float64     `json:"position,omitempty"`
}

// UpdateInfo is the outcome of comparing the running build against the published version.
type UpdateInfo struct {
	Current     int64  `json:"current"`
	Latest      int64  `json:"latest"`
	Available   bool   `json:"available"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ShareMessage is a plain text summary of a video for sharing.
type ShareMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
