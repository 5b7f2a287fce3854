package ports

import (
	"context"
	"io"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
)

// VideoRepository defines storage operations for catalog records
type VideoRepository interface {
	// Upsert inserts when video.ID is 0 and replaces the row otherwise.
	Upsert(ctx context.Context, video *domain.Video) error
	UpsertAll(ctx context.Context, videos []domain.Video) error
	GetByID(ctx context.Context, id int64) (*domain.Video, error)
	GetByURL(ctx context.Context, url string) (*domain.Video, error)
	List(ctx context.Context) ([]domain.Video, error) // Newest first
	SearchByHashtag(ctx context.Context, query string) ([]domain.Video, error)
	UpdateStarred(ctx context.Context, id int64, starred bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// SettingsStore is the device-local key/value preference store
type SettingsStore interface {
	GetFloat(key string, fallback float64) (float64, error)
	SetFloat(key string, value float64) error
}

// MediaStore keeps local copies of video files
type MediaStore interface {
	Save(r io.Reader) (string, error) // Returns a file:// locator
	Remove(locator string) error
	// Resolve maps a locator to a file owned by the store.
	Resolve(locator string) (string, bool)
	LocatorFor(name string) string
	Dir() string
}

// VideoService defines the catalog operations
type VideoService interface {
	Save(ctx context.Context, video domain.Video) (*domain.Video, error)
	Get(ctx context.Context, id int64) (*domain.Video, error)
	Attach(ctx context.Context, locator string) (*domain.Video, error)
	AttachUpload(ctx context.Context, r io.Reader) (*domain.Video, error)
	List(ctx context.Context, criteria domain.Criteria) ([]domain.Video, error)
	Delete(ctx context.Context, id int64) error
	SetStarred(ctx context.Context, id int64, starred bool) error
	Tags(ctx context.Context) ([]domain.TagCount, error)
	DeleteTag(ctx context.Context, tag string) (int, error)
	ImportLine(ctx context.Context, r io.Reader) (*domain.Video, error)
	Share(ctx context.Context, id int64) (*domain.ShareMessage, error)
	Playback(ctx context.Context, id int64, mediaBase string) (*domain.Playback, error)
	EnsureSeed(ctx context.Context) error
}

// BackupService defines export and import of the whole catalog
type BackupService interface {
	ExportJSON(ctx context.Context) ([]byte, error)
	ExportArchive(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader, isZip bool) (int, error)
}

// SettingsService defines the user preference operations
type SettingsService interface {
	FontSize() (float64, error)
	IncreaseFont() (float64, error)
	DecreaseFont() (float64, error)
}

// UpdateService checks the published version against the running build
type UpdateService interface {
	Check(ctx context.Context) (*domain.UpdateInfo, error)
}
