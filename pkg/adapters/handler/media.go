package handler

import (
	"net/http"
)

// MediaResolver maps a served file name to a path on disk.
type MediaResolver interface {
	Path(name string) (string, bool)
}

// ServeMedia streams a local clip, with range support for seeking
func ServeMedia(media MediaResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := media.Path(r.PathValue("name"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}
}
