package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

const latestVersionKey = "latest"

// UpdateService compares the build's version code with a published plaintext
// version file.
type UpdateService struct {
	client      *http.Client
	versionURL  string
	downloadURL string
	current     int64
	cache       *cache.Cache
	log         *logrus.Entry
}

func NewUpdateService(client *http.Client, versionURL, downloadURL string, current int64) *UpdateService {
	if client == nil {
		client = http.DefaultClient
	}
	return &UpdateService{
		client:      client,
		versionURL:  versionURL,
		downloadURL: downloadURL,
		current:     current,
		cache:       cache.New(5*time.Minute, 10*time.Minute),
		log:         logging.LogService("UpdateService"),
	}
}

func (s *UpdateService) Check(ctx context.Context) (*domain.UpdateInfo, error) {
	latest, err := s.latest(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to check for updates")
		return nil, err
	}

	info := &domain.UpdateInfo{
		Current:   s.current,
		Latest:    latest,
		Available: latest > s.current,
	}
	if info.Available {
		info.DownloadURL = s.downloadURL
	}
	return info, nil
}

func (s *UpdateService) latest(ctx context.Context) (int64, error) {
	if v, found := s.cache.Get(latestVersionKey); found {
		return v.(int64), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.versionURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("version file: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, err
	}
	latest, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version file: %w", err)
	}

	s.cache.Set(latestVersionKey, latest, cache.DefaultExpiration)
	return latest, nil
}

var _ ports.UpdateService = (*UpdateService)(nil)
