package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/media"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/settings"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/backup"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

type fixture struct {
	repo   *sqlite.SQLiteRepository
	media  *media.FileStore
	videos *VideoService
	backup *BackupService
}

var dbSeq int64

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dbURL := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), atomic.AddInt64(&dbSeq, 1))
	repo, err := sqlite.NewSQLiteRepository(dbURL)
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store, err := media.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		repo:   repo,
		media:  store,
		videos: NewVideoService(repo, store),
		backup: NewBackupService(repo, store),
	}
}

func TestSaveDerivesHashtags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.videos.Save(ctx, domain.Video{
		Title:    "Swingout",
		VideoURL: "https://youtu.be/a",
		Notes:    "... #Lindy #swing #lindy ...",
		Hashtags: "stale",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Hashtags != "lindy swing" {
		t.Errorf("Hashtags = %q, want %q", saved.Hashtags, "lindy swing")
	}

	saved.Notes = "#charleston only"
	again, err := f.videos.Save(ctx, *saved)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != saved.ID || again.Hashtags != "charleston" {
		t.Errorf("resave = %+v", again)
	}

	if _, err := f.videos.Save(ctx, domain.Video{Title: "no url"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing url err = %v", err)
	}
}

func TestAttachFindsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, _ := f.videos.Save(ctx, domain.Video{Title: "x", VideoURL: "https://youtu.be/x"})

	got, err := f.videos.Attach(ctx, "https://youtu.be/x")
	if err != nil || got.ID != saved.ID {
		t.Errorf("Attach existing = %+v, %v", got, err)
	}

	draft, err := f.videos.Attach(ctx, "https://youtu.be/new")
	if err != nil || draft.ID != 0 || draft.VideoURL != "https://youtu.be/new" {
		t.Errorf("Attach new = %+v, %v", draft, err)
	}
}

func TestDeleteRemovesLocalFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.videos.AttachUpload(ctx, strings.NewReader("clip"))
	if err != nil {
		t.Fatal(err)
	}
	saved, err := f.videos.Save(ctx, *draft)
	if err != nil {
		t.Fatal(err)
	}
	path, _ := backup.LocalPath(saved.VideoURL)

	if err := f.videos.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("local file not removed: %v", err)
	}
	if _, err := f.videos.Get(ctx, saved.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestDeleteTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.videos.Save(ctx, domain.Video{Title: "a", VideoURL: "u1", Notes: "#aerial #lindy"})
	b, _ := f.videos.Save(ctx, domain.Video{Title: "b", VideoURL: "u2", Notes: "#jive"})

	if _, err := f.videos.DeleteTag(ctx, "lindy"); !errors.Is(err, domain.ErrBaselineTag) {
		t.Errorf("baseline delete err = %v", err)
	}

	n, err := f.videos.DeleteTag(ctx, "aerial")
	if err != nil || n != 1 {
		t.Fatalf("DeleteTag = %d, %v", n, err)
	}
	got, _ := f.videos.Get(ctx, a.ID)
	if got.Hashtags != "lindy" || got.Notes != "#aerial #lindy" {
		t.Errorf("after delete = %+v", got)
	}
	other, _ := f.videos.Get(ctx, b.ID)
	if other.Hashtags != "jive" {
		t.Errorf("unrelated video changed: %+v", other)
	}
}

func TestListAndTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.videos.Save(ctx, domain.Video{Title: "Swingout", VideoURL: "u1", Notes: "#lindy", IsStarred: true})
	f.videos.Save(ctx, domain.Video{Title: "Kicks", VideoURL: "u2", Notes: "#charleston"})

	starred, err := f.videos.List(ctx, domain.Criteria{StarredOnly: true})
	if err != nil || len(starred) != 1 || starred[0].Title != "Swingout" {
		t.Errorf("starred = %+v, %v", starred, err)
	}

	all, _ := f.videos.List(ctx, domain.Criteria{})
	if len(all) != 2 || all[0].Title != "Kicks" {
		t.Errorf("all = %+v", all)
	}

	tags, err := f.videos.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range tags {
		if tc.Name == "charleston" && tc.Count != 1 {
			t.Errorf("charleston count = %d", tc.Count)
		}
	}
}

func TestImportLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.videos.ImportLine(ctx, strings.NewReader("Tuck turn|https://youtu.be/t|#lindy"))
	if err != nil || v == nil || v.ID == 0 {
		t.Fatalf("ImportLine = %+v, %v", v, err)
	}
	if v.Hashtags != "" {
		t.Errorf("imported hashtags should start empty, got %q", v.Hashtags)
	}

	v, err = f.videos.ImportLine(ctx, strings.NewReader("garbage"))
	if err != nil || v != nil {
		t.Errorf("garbage line = %+v, %v", v, err)
	}
}

func TestEnsureSeedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.videos.EnsureSeed(ctx); err != nil {
			t.Fatal(err)
		}
	}
	count, _ := f.repo.Count(ctx)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	src.videos.Save(ctx, domain.Video{Title: "a", VideoURL: "https://youtu.be/a", Notes: "#lindy", IsStarred: true})
	src.videos.Save(ctx, domain.Video{Title: "b", VideoURL: "https://youtu.be/b", Notes: "plain"})

	data, err := src.backup.ExportJSON(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dst := newFixture(t)
	// Give dst a different id sequence so ids cannot match by accident.
	dst.videos.Save(ctx, domain.Video{Title: "existing", VideoURL: "u"})

	n, err := dst.backup.Import(ctx, bytes.NewReader(data), false)
	if err != nil || n != 2 {
		t.Fatalf("Import = %d, %v", n, err)
	}

	want, _ := src.videos.List(ctx, domain.Criteria{})
	got, _ := dst.videos.List(ctx, domain.Criteria{})
	if len(got) != 3 {
		t.Fatalf("got %d videos, want 3", len(got))
	}
	byTitle := map[string]domain.Video{}
	for _, g := range got {
		g.ID = 0
		byTitle[g.Title] = g
	}
	for _, w := range want {
		w.ID = 0
		if g := byTitle[w.Title]; g != w {
			t.Errorf("imported %+v, want %+v", g, w)
		}
	}
}

func TestImportMalformedLeavesCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.videos.Save(ctx, domain.Video{Title: "keep", VideoURL: "u"})

	payload := `[{"title":"ok","url":"u2","notes":"","hashtags":""}, {"title":"broken"}]`
	if _, err := f.backup.Import(ctx, strings.NewReader(payload), false); !errors.Is(err, domain.ErrImportFailed) {
		t.Fatalf("err = %v, want ErrImportFailed", err)
	}

	count, _ := f.repo.Count(ctx)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestArchiveExportImport(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	draft, err := src.videos.AttachUpload(ctx, strings.NewReader("local-clip"))
	if err != nil {
		t.Fatal(err)
	}
	draft.Title = "Local"
	src.videos.Save(ctx, *draft)

	var buf bytes.Buffer
	if err := src.backup.ExportArchive(ctx, &buf); err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != backup.DataEntry {
		t.Fatalf("unexpected entries: %d", len(zr.File))
	}

	dst := newFixture(t)
	n, err := dst.backup.Import(ctx, bytes.NewReader(buf.Bytes()), true)
	if err != nil || n != 1 {
		t.Fatalf("Import zip = %d, %v", n, err)
	}
	name := zr.File[1].Name
	data, err := os.ReadFile(filepath.Join(dst.media.Dir(), name))
	if err != nil || string(data) != "local-clip" {
		t.Errorf("extracted = %q, %v", data, err)
	}

	// The restored record points at the destination store, so a second
	// export still carries the clip.
	list, _ := dst.repo.List(ctx)
	if len(list) != 1 || list[0].VideoURL != dst.media.LocatorFor(name) {
		t.Fatalf("restored records = %+v", list)
	}
	if err := os.RemoveAll(src.media.Dir()); err != nil {
		t.Fatal(err)
	}
	var again bytes.Buffer
	if err := dst.backup.ExportArchive(ctx, &again); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	zr, err = zip.NewReader(bytes.NewReader(again.Bytes()), int64(again.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 || zr.File[1].Name != name {
		t.Errorf("re-export entries = %d", len(zr.File))
	}
}

func TestForeignLocatorIsNeverTouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	secret := filepath.Join(t.TempDir(), "secret.env")
	if err := os.WriteFile(secret, []byte("JWT_SECRET=hunter2"), 0o600); err != nil {
		t.Fatal(err)
	}
	saved, err := f.videos.Save(ctx, domain.Video{Title: "Sneaky", VideoURL: media.Locator(secret)})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.backup.ExportArchive(ctx, &buf); err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 {
		t.Errorf("archive holds a file outside the media dir: %d entries", len(zr.File))
	}

	if err := f.videos.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(secret); err != nil {
		t.Errorf("Delete removed a file outside the media dir: %v", err)
	}
}

func TestSettingsFontSize(t *testing.T) {
	store, err := settings.NewInMemoryStore()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	svc := NewSettingsService(store)

	if size, _ := svc.FontSize(); size != DefaultFontSize {
		t.Errorf("default = %v", size)
	}
	if size, _ := svc.IncreaseFont(); size != 18 {
		t.Errorf("increase = %v, want 18", size)
	}
	for i := 0; i < 10; i++ {
		svc.DecreaseFont()
	}
	if size, _ := svc.FontSize(); size != MinFontSize {
		t.Errorf("after many decreases = %v, want %v", size, MinFontSize)
	}
}

func TestUpdateCheck(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(" 5\n"))
	}))
	defer srv.Close()

	svc := NewUpdateService(srv.Client(), srv.URL, "https://example.com/app.apk", 3)
	info, err := svc.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !info.Available || info.Latest != 5 || info.DownloadURL != "https://example.com/app.apk" {
		t.Errorf("info = %+v", info)
	}

	svc.Check(context.Background())
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected cached second check, got %d hits", hits)
	}

	current := NewUpdateService(srv.Client(), srv.URL, "x", 5)
	info, _ = current.Check(context.Background())
	if info.Available || info.DownloadURL != "" {
		t.Errorf("same version should not offer update: %+v", info)
	}
}

func TestUpdateCheckBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	svc := NewUpdateService(srv.Client(), srv.URL, "x", 1)
	if _, err := svc.Check(context.Background()); err == nil {
		t.Error("expected error for non-numeric version")
	}
}

func TestTaskRunner(t *testing.T) {
	r := NewTaskRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok := r.Go("ok", func(ctx context.Context) (interface{}, error) { return 3, nil })
	bad := r.Go("bad", func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") })

	if res, err := ok.Wait(ctx); err != nil || res != 3 {
		t.Errorf("ok task = %v, %v", res, err)
	}
	if _, err := bad.Wait(ctx); err == nil {
		t.Error("expected failure")
	}

	got, found := r.Get(bad.ID)
	if !found {
		t.Fatal("task not registered")
	}
	snap := got.Snapshot()
	if snap.Status != TaskFailed || snap.Error != "boom" {
		t.Errorf("snapshot = %+v", snap)
	}
	if err := r.Shutdown(ctx); err != nil {
		t.Error(err)
	}
}
