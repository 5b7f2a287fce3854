// Package backup converts the catalog to and from its portable JSON form and
// packs that JSON together with local video files into a ZIP archive.
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

// DataEntry is the archive entry holding the JSON payload.
const DataEntry = "data.json"

// MaxEntrySize caps the decompressed size of a single archive entry.
var MaxEntrySize int64 = 512 << 20

// ErrEntryTooLarge is returned when an entry expands past MaxEntrySize.
var ErrEntryTooLarge = errors.New("archive entry too large")

// Resolver maps a locator to a readable local file, refusing anything the
// caller does not own.
type Resolver func(locator string) (string, bool)

// record is one element of the backup array. Field names are part of the
// file format shared with older exports.
type record struct {
	Title     *string `json:"title"`
	URL       *string `json:"url"`
	Notes     *string `json:"notes"`
	Hashtags  *string `json:"hashtags"`
	IsStarred *bool   `json:"isStarred,omitempty"`
}

// Encode renders videos as an indented JSON array. IDs are not exported.
func Encode(videos []domain.Video) ([]byte, error) {
	recs := make([]record, 0, len(videos))
	for i := range videos {
		v := videos[i]
		starred := v.IsStarred
		recs = append(recs, record{
			Title:     &v.Title,
			URL:       &v.VideoURL,
			Notes:     &v.Notes,
			Hashtags:  &v.Hashtags,
			IsStarred: &starred,
		})
	}
	return json.MarshalIndent(recs, "", "    ")
}

// Decode parses a backup payload. Every element must carry the four string
// fields; isStarred defaults to false. Decoded videos have ID 0.
func Decode(data []byte) ([]domain.Video, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if recs == nil {
		return nil, errors.New("decode backup: payload is not an array")
	}

	videos := make([]domain.Video, 0, len(recs))
	for i, r := range recs {
		if r.Title == nil || r.URL == nil || r.Notes == nil || r.Hashtags == nil {
			return nil, fmt.Errorf("decode backup: record %d is missing a required field", i)
		}
		v := domain.Video{
			Title:    *r.Title,
			VideoURL: *r.URL,
			Notes:    *r.Notes,
			Hashtags: *r.Hashtags,
		}
		if r.IsStarred != nil {
			v.IsStarred = *r.IsStarred
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// LocalPath returns the filesystem path of a file:// locator.
func LocalPath(locator string) (string, bool) {
	if !strings.HasPrefix(locator, "file://") {
		return "", false
	}
	u, err := url.Parse(locator)
	if err != nil || u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// WriteArchive writes payload as DataEntry followed by every local video file
// that resolve accepts and that still exists on disk.
func WriteArchive(w io.Writer, payload []byte, videos []domain.Video, resolve Resolver) error {
	zw := zip.NewWriter(w)

	f, err := zw.Create(DataEntry)
	if err != nil {
		return err
	}
	if _, err := f.Write(payload); err != nil {
		return err
	}

	written := make(map[string]bool)
	for _, v := range videos {
		p, ok := resolve(v.VideoURL)
		if !ok {
			continue
		}
		name := filepath.Base(p)
		if written[name] {
			continue
		}
		if err := addFile(zw, p, name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		written[name] = true
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

// Archive is the result of reading a backup archive.
type Archive struct {
	// Payload is the DataEntry contents, nil if the archive has none.
	Payload []byte
	// Files holds the base names extracted into the destination directory.
	Files []string
}

// ReadArchive extracts every non-JSON entry into destDir and returns the
// DataEntry payload together with the extracted file names.
func ReadArchive(r io.ReaderAt, size int64, destDir string) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Entry names are reduced to their base name in extract.
	archive := &Archive{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name == DataEntry {
			archive.Payload, err = readEntry(f)
			if err != nil {
				return nil, err
			}
			continue
		}
		name, err := extract(f, destDir)
		if err != nil {
			return nil, err
		}
		archive.Files = append(archive.Files, name)
	}
	return archive, nil
}

// copyLimited copies at most MaxEntrySize bytes and fails on anything longer.
func copyLimited(dst io.Writer, src io.Reader) error {
	n, err := io.Copy(dst, io.LimitReader(src, MaxEntrySize+1))
	if err != nil {
		return err
	}
	if n > MaxEntrySize {
		return ErrEntryTooLarge
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if err := copyLimited(&buf, rc); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}

func extract(f *zip.File, destDir string) (string, error) {
	name := filepath.Base(filepath.FromSlash(f.Name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("archive entry %q has no usable name", f.Name)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	path := filepath.Join(destDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := copyLimited(out, rc); err != nil {
		out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return name, out.Close()
}
