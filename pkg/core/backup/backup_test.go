package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	videos := []domain.Video{
		{ID: 9, Title: "Swingout", VideoURL: "https://youtu.be/x", Notes: "#lindy", Hashtags: "lindy", IsStarred: true},
		{ID: 3, Title: "Kicks", VideoURL: "file:///tmp/k.mp4", Notes: "", Hashtags: ""},
	}

	data, err := Encode(videos)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var generic []map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	for _, key := range []string{"title", "url", "notes", "hashtags", "isStarred"} {
		if _, ok := generic[0][key]; !ok {
			t.Errorf("missing key %q in %v", key, generic[0])
		}
	}
	if _, ok := generic[0]["id"]; ok {
		t.Error("ids must not be exported")
	}
	if !strings.Contains(string(data), "\n    {") {
		t.Errorf("expected 4-space indentation, got %s", data)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(videos) {
		t.Fatalf("got %d videos, want %d", len(decoded), len(videos))
	}
	for i, v := range decoded {
		want := videos[i]
		want.ID = 0
		if v != want {
			t.Errorf("record %d = %+v, want %+v", i, v, want)
		}
	}
}

func TestDecodeStarredDefault(t *testing.T) {
	videos, err := Decode([]byte(`[{"title":"a","url":"u","notes":"","hashtags":""}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if videos[0].IsStarred {
		t.Error("isStarred should default to false")
	}
}

func TestDecodeMalformed(t *testing.T) {
	payloads := []string{
		``,
		`null`,
		`{"title":"a"}`,
		`[1, 2]`,
		`[{"title":"a","url":"u","notes":""}]`,
		`[{"title":"a","url":"u","notes":"","hashtags":""}, null]`,
		`[{"title":"a","url":"u","notes":"","hashtags":"","isStarred":"yes"}]`,
	}
	for _, p := range payloads {
		if _, err := Decode([]byte(p)); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", p)
		}
	}
}

func TestLocalPath(t *testing.T) {
	if p, ok := LocalPath("file:///data/video_1.mp4"); !ok || p != "/data/video_1.mp4" {
		t.Errorf("LocalPath = %q, %v", p, ok)
	}
	if _, ok := LocalPath("https://youtu.be/x"); ok {
		t.Error("web URL must not be local")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	src := t.TempDir()
	clip := filepath.Join(src, "video_1.mp4")
	if err := os.WriteFile(clip, []byte("fake-mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	videos := []domain.Video{
		{Title: "Local", VideoURL: "file://" + clip},
		{Title: "Gone", VideoURL: "file://" + filepath.Join(src, "missing.mp4")},
		{Title: "Web", VideoURL: "https://youtu.be/x"},
	}
	payload, err := Encode(videos)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, payload, videos, LocalPath); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != DataEntry || names[1] != "video_1.mp4" {
		t.Fatalf("entries = %v", names)
	}

	dest := t.TempDir()
	got, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dest)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Errorf("payload mismatch")
	}
	if len(got.Files) != 1 || got.Files[0] != "video_1.mp4" {
		t.Errorf("extracted = %v", got.Files)
	}
	content, err := os.ReadFile(filepath.Join(dest, "video_1.mp4"))
	if err != nil || string(content) != "fake-mp4" {
		t.Errorf("extracted file = %q, %v", content, err)
	}
}

func TestReadArchiveStripsDirectories(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("../../escape.mp4")
	w.Write([]byte("x"))
	zw.Close()

	dest := t.TempDir()
	archive, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dest)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if archive.Payload != nil {
		t.Errorf("expected no payload, got %q", archive.Payload)
	}
	if _, err := os.Stat(filepath.Join(dest, "escape.mp4")); err != nil {
		t.Errorf("entry should land inside dest: %v", err)
	}
}

func TestReadArchiveRejectsGarbage(t *testing.T) {
	data := []byte("not a zip")
	if _, err := ReadArchive(bytes.NewReader(data), int64(len(data)), t.TempDir()); err == nil {
		t.Error("expected error")
	}
}

func TestWriteArchiveSkipsUnresolvedFiles(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.env")
	if err := os.WriteFile(outside, []byte("JWT_SECRET=x"), 0o600); err != nil {
		t.Fatal(err)
	}
	videos := []domain.Video{{Title: "Sneaky", VideoURL: "file://" + outside}}
	payload, _ := Encode(videos)

	refuse := func(string) (string, bool) { return "", false }
	var buf bytes.Buffer
	if err := WriteArchive(&buf, payload, videos, refuse); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != DataEntry {
		t.Errorf("archive should only hold %s, got %d entries", DataEntry, len(zr.File))
	}
}

func TestReadArchiveEntryTooLarge(t *testing.T) {
	old := MaxEntrySize
	MaxEntrySize = 8
	defer func() { MaxEntrySize = old }()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("video_2.mp4")
	w.Write(bytes.Repeat([]byte("a"), 64))
	zw.Close()

	dest := t.TempDir()
	_, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dest)
	if !errors.Is(err, ErrEntryTooLarge) {
		t.Fatalf("err = %v, want ErrEntryTooLarge", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "video_2.mp4")); !os.IsNotExist(err) {
		t.Errorf("partial file should be removed: %v", err)
	}
}
