package domain

import "errors"

var (
	ErrNotFound     = errors.New("video not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrBaselineTag  = errors.New("cannot delete baseline tags")
	ErrImportFailed = errors.New("import failed")
)
