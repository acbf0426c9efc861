package services

import (
	"errors"
	"fmt"
	"strings"

	"registration-backend/config"
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrEmptyFile            = errors.New("file is empty")
)

// ValidateUpload checks an uploaded file's name and size before it is parsed
// and returns its extension.
func ValidateUpload(fileName string, size int64, settings config.ImportSettings) (string, error) {
	ext := FileExtension(fileName)
	allowed := false
	for _, candidate := range settings.AllowedExtensions {
		if ext == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: .%s (allowed: %s)", ErrUnsupportedExtension, ext, strings.Join(settings.AllowedExtensions, ", "))
	}
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if size > settings.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d MB limit", ErrFileTooLarge, size, settings.MaxFileSize/(1024*1024))
	}
	return ext, nil
}

// UploadErrorMessage turns a preview failure into the message shown to the operator.
func UploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedExtension):
		return "Invalid file type. Please upload an Excel (.xls, .xlsx, .xlsm) or CSV (.csv) file."
	case errors.Is(err, ErrFileTooLarge):
		return "File size exceeds the upload limit. Please upload a smaller file."
	case errors.Is(err, ErrEmptyFile):
		return "The uploaded file is empty."
	case errors.Is(err, ErrLegacyXLS):
		return "Legacy .xls workbooks cannot be read. Please save the file as .xlsx and upload again."
	case errors.Is(err, ErrEmptySpreadsheet):
		return "The spreadsheet has no header row."
	default:
		return "The file could not be read. Please check that it is a valid spreadsheet."
	}
}
