package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/backup"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

type BackupService struct {
	repo  ports.VideoRepository
	media ports.MediaStore
	log   *logrus.Entry
}

func NewBackupService(repo ports.VideoRepository, media ports.MediaStore) *BackupService {
	return &BackupService{
		repo:  repo,
		media: media,
		log:   logging.LogService("BackupService"),
	}
}

func (s *BackupService) ExportJSON(ctx context.Context) ([]byte, error) {
	videos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return backup.Encode(videos)
}

// ExportArchive writes a ZIP with the JSON payload and every clip held by
// the media store.
func (s *BackupService) ExportArchive(ctx context.Context, w io.Writer) error {
	videos, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	payload, err := backup.Encode(videos)
	if err != nil {
		return err
	}
	if err := backup.WriteArchive(w, payload, videos, s.media.Resolve); err != nil {
		s.log.WithError(err).Error("Export failed")
		return err
	}
	return nil
}

// Import decodes the whole payload before touching the store, so a malformed
// backup leaves the catalog unchanged. Every record is added as new.
func (s *BackupService) Import(ctx context.Context, r io.Reader, isZip bool) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, s.fail(err)
	}

	var restored []string
	if isZip {
		archive, err := backup.ReadArchive(bytes.NewReader(data), int64(len(data)), s.media.Dir())
		if err != nil {
			return 0, s.fail(err)
		}
		if archive.Payload == nil {
			// Archive without a payload only restores files.
			return 0, nil
		}
		data, restored = archive.Payload, archive.Files
	}

	videos, err := backup.Decode(data)
	if err != nil {
		return 0, s.fail(err)
	}
	s.relocate(videos, restored)
	if err := s.repo.UpsertAll(ctx, videos); err != nil {
		return 0, s.fail(err)
	}

	s.log.WithFields(logrus.Fields{"videos": len(videos), "zip": isZip}).Info("Import successful")
	return len(videos), nil
}

// relocate points local locators at the clips just extracted into the media store.
func (s *BackupService) relocate(videos []domain.Video, restored []string) {
	if len(restored) == 0 {
		return
	}
	names := make(map[string]bool, len(restored))
	for _, n := range restored {
		names[n] = true
	}
	for i := range videos {
		p, ok := backup.LocalPath(videos[i].VideoURL)
		if !ok {
			continue
		}
		if base := path.Base(p); names[base] {
			videos[i].VideoURL = s.media.LocatorFor(base)
		}
	}
}

func (s *BackupService) fail(err error) error {
	s.log.WithError(err).Warn("Import failed")
	return fmt.Errorf("%w: %v", domain.ErrImportFailed, err)
}

var _ ports.BackupService = (*BackupService)(nil)
