package services

import (
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

const (
	FontSizeKey     = "font_size"
	DefaultFontSize = 16.0
	FontSizeStep    = 2.0
	MinFontSize     = 10.0
)

type SettingsService struct {
	store ports.SettingsStore
}

func NewSettingsService(store ports.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) FontSize() (float64, error) {
	return s.store.GetFloat(FontSizeKey, DefaultFontSize)
}

func (s *SettingsService) IncreaseFont() (float64, error) {
	size, err := s.FontSize()
	if err != nil {
		return 0, err
	}
	size += FontSizeStep
	return size, s.store.SetFloat(FontSizeKey, size)
}

// DecreaseFont shrinks the font only while it is above MinFontSize.
func (s *SettingsService) DecreaseFont() (float64, error) {
	size, err := s.FontSize()
	if err != nil {
		return 0, err
	}
	if size <= MinFontSize {
		return size, nil
	}
	size -= FontSizeStep
	return size, s.store.SetFloat(FontSizeKey, size)
}

var _ ports.SettingsService = (*SettingsService)(nil)
