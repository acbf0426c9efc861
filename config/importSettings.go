package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ImportSettings controls the registration import pipeline.
type ImportSettings struct {
	MaxFileSize       int64
	AllowedExtensions []string
	PreviewRows       int
	UploadTTL         time.Duration
	UploadDir         string
	ReportDir         string
	LockTTL           time.Duration
}

const (
	defaultMaxFileSizeMB = 10
	defaultPreviewRows   = 5
)

// LoadImportSettings reads IMPORT_* variables, falling back to defaults.
func LoadImportSettings() (ImportSettings, error) {
	settings := ImportSettings{
		MaxFileSize:       defaultMaxFileSizeMB * 1024 * 1024,
		AllowedExtensions: []string{"xls", "xlsx", "xlsm", "csv"},
		PreviewRows:       defaultPreviewRows,
		UploadTTL:         24 * time.Hour,
		UploadDir:         GetEnvDefault("IMPORT_UPLOAD_DIR", "./uploads/registrations"),
		ReportDir:         GetEnvDefault("IMPORT_REPORT_DIR", "./public/files"),
		LockTTL:           10 * time.Minute,
	}

	if raw := GetEnv("IMPORT_MAX_FILE_SIZE_MB"); raw != "" {
		mb, err := strconv.Atoi(raw)
		if err != nil || mb <= 0 {
			return settings, fmt.Errorf("invalid IMPORT_MAX_FILE_SIZE_MB %q", raw)
		}
		settings.MaxFileSize = int64(mb) * 1024 * 1024
	}

	if raw := GetEnv("IMPORT_ALLOWED_EXTENSIONS"); raw != "" {
		var exts []string
		for _, ext := range strings.Split(raw, ",") {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				exts = append(exts, ext)
			}
		}
		if len(exts) == 0 {
			return settings, fmt.Errorf("IMPORT_ALLOWED_EXTENSIONS lists no extensions")
		}
		settings.AllowedExtensions = exts
	}

	if raw := GetEnv("IMPORT_PREVIEW_ROWS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return settings, fmt.Errorf("invalid IMPORT_PREVIEW_ROWS %q", raw)
		}
		settings.PreviewRows = n
	}

	var err error
	if settings.UploadTTL, err = durationEnv("IMPORT_UPLOAD_TTL", settings.UploadTTL); err != nil {
		return settings, err
	}
	if settings.LockTTL, err = durationEnv("IMPORT_LOCK_TTL", settings.LockTTL); err != nil {
		return settings, err
	}

	return settings, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}
