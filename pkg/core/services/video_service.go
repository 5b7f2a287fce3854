package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/filter"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/hashtag"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/playback"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/share"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

// SeedVideo is inserted on startup when its URL is missing from the catalog.
var SeedVideo = domain.Video{
	Title:     "Seed: Lindy Hop Practice",
	VideoURL:  "https://www.youtube.com/watch?v=atlkqWeTiok",
	Hashtags:  "lindy swing",
	Notes:     "Hardcoded test link #lindy #swing",
	IsStarred: true,
}

type VideoService struct {
	repo  ports.VideoRepository
	media ports.MediaStore
	log   *logrus.Entry
}

func NewVideoService(repo ports.VideoRepository, media ports.MediaStore) *VideoService {
	return &VideoService{
		repo:  repo,
		media: media,
		log:   logging.LogService("VideoService"),
	}
}

// Save re-derives the hashtags from the notes and upserts the video.
func (s *VideoService) Save(ctx context.Context, video domain.Video) (*domain.Video, error) {
	if strings.TrimSpace(video.VideoURL) == "" {
		return nil, fmt.Errorf("%w: video url is required", domain.ErrInvalidInput)
	}
	video.Hashtags = hashtag.Extract(video.Notes)

	if err := s.repo.Upsert(ctx, &video); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"id":       video.ID,
		"hashtags": video.Hashtags,
	}).Info("Saved video")
	return &video, nil
}

func (s *VideoService) Get(ctx context.Context, id int64) (*domain.Video, error) {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, domain.ErrNotFound
	}
	return video, nil
}

// Attach opens a locator for editing: the stored record when one exists for
// that URL, otherwise an unsaved draft.
func (s *VideoService) Attach(ctx context.Context, locator string) (*domain.Video, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("%w: locator is required", domain.ErrInvalidInput)
	}
	existing, err := s.repo.GetByURL(ctx, locator)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return &domain.Video{VideoURL: locator}, nil
}

// AttachUpload stores an uploaded clip locally and returns a draft pointing at it.
func (s *VideoService) AttachUpload(ctx context.Context, r io.Reader) (*domain.Video, error) {
	locator, err := s.media.Save(r)
	if err != nil {
		s.log.WithError(err).Warn("Error saving video copy")
		return nil, err
	}
	return &domain.Video{VideoURL: locator}, nil
}

func (s *VideoService) List(ctx context.Context, criteria domain.Criteria) ([]domain.Video, error) {
	videos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(videos, criteria), nil
}

// Delete removes the record and, for local clips, the file behind it.
func (s *VideoService) Delete(ctx context.Context, id int64) error {
	video, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Remove(video.VideoURL); err != nil {
		s.log.WithError(err).WithField("url", video.VideoURL).Warn("Failed to remove local file")
	}
	return s.repo.Delete(ctx, id)
}

func (s *VideoService) SetStarred(ctx context.Context, id int64, starred bool) error {
	return s.repo.UpdateStarred(ctx, id, starred)
}

func (s *VideoService) Tags(ctx context.Context) ([]domain.TagCount, error) {
	videos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return hashtag.Discover(videos), nil
}

// DeleteTag strips tag from every video's hashtags and reports how many
// videos changed. Notes are left untouched, so the tag returns on the next save.
func (s *VideoService) DeleteTag(ctx context.Context, tag string) (int, error) {
	if hashtag.IsBaseline(tag) {
		return 0, domain.ErrBaselineTag
	}
	videos, err := s.repo.SearchByHashtag(ctx, tag)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, v := range videos {
		updated := hashtag.Remove(v.Hashtags, tag)
		if updated == v.Hashtags {
			continue
		}
		v.Hashtags = updated
		if err := s.repo.Upsert(ctx, &v); err != nil {
			return changed, err
		}
		changed++
	}
	s.log.WithFields(logrus.Fields{"tag": tag, "videos": changed}).Info("Deleted tag")
	return changed, nil
}

// ImportLine creates a video from a "Title|URL|Notes" payload. Unrecognised
// payloads return a nil video and no error.
func (s *VideoService) ImportLine(ctx context.Context, r io.Reader) (*domain.Video, error) {
	video, ok, err := share.ReadLine(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Debug("Ignoring unrecognised import line")
		return nil, nil
	}
	if err := s.repo.Upsert(ctx, &video); err != nil {
		return nil, err
	}
	s.log.WithField("title", video.Title).Info("Imported move")
	return &video, nil
}

func (s *VideoService) Share(ctx context.Context, id int64) (*domain.ShareMessage, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	msg := share.Text(*video)
	return &msg, nil
}

func (s *VideoService) Playback(ctx context.Context, id int64, mediaBase string) (*domain.Playback, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pb := playback.Describe(*video, mediaBase)
	return &pb, nil
}

func (s *VideoService) EnsureSeed(ctx context.Context) error {
	existing, err := s.repo.GetByURL(ctx, SeedVideo.VideoURL)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	seed := SeedVideo
	return s.repo.Upsert(ctx, &seed)
}

var _ ports.VideoService = (*VideoService)(nil)
