// Package share handles the plain-text formats used to pass single moves
// between devices: the one-line "Title|URL|Notes" import and the outgoing
// share message.
package share

import (
	"bufio"
	"io"
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

// ParseLine reads a "Title|URL|Notes" line. Lines with fewer than two fields
// are not recognised.
func ParseLine(line string) (domain.Video, bool) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return domain.Video{}, false
	}
	v := domain.Video{
		Title:    parts[0],
		VideoURL: parts[1],
	}
	if len(parts) > 2 {
		v.Notes = parts[2]
	}
	return v, true
}

// ReadLine parses the first line of r.
func ReadLine(r io.Reader) (domain.Video, bool, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return domain.Video{}, false, err
	}
	if line == "" {
		return domain.Video{}, false, nil
	}
	v, ok := ParseLine(line)
	return v, ok, nil
}

// Text builds the outgoing share message for v.
func Text(v domain.Video) domain.ShareMessage {
	var b strings.Builder
	b.WriteString("Move: " + v.Title + "\n\n")
	if strings.HasPrefix(v.VideoURL, "http") {
		b.WriteString("Link: " + v.VideoURL + "\n\n")
	}
	if v.Notes != "" {
		b.WriteString("Notes: " + v.Notes)
	}
	return domain.ShareMessage{
		Subject: "Dance Trainer Move: " + v.Title,
		Body:    b.String(),
	}
}
