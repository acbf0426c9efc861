package services

import (
	"fmt"
	"testing"

	"registration-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.ImportSettings {
	return config.ImportSettings{
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{"xls", "xlsx", "xlsm", "csv"},
		PreviewRows:       5,
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantExt string
		wantErr error
	}{
		{"xlsx", "Users.XLSX", 1024, "xlsx", nil},
		{"csv", "users.csv", 10 * 1024 * 1024, "csv", nil},
		{"legacy xls passes", "users.xls", 10, "xls", nil},
		{"bad extension", "users.pdf", 10, "", ErrUnsupportedExtension},
		{"no extension", "users", 10, "", ErrUnsupportedExtension},
		{"too large", "users.csv", 10*1024*1024 + 1, "", ErrFileTooLarge},
		{"empty", "users.csv", 0, "", ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateUpload(tt.file, tt.size, testSettings())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestUploadErrorMessagesAreDistinct(t *testing.T) {
	errs := []error{
		ErrUnsupportedExtension,
		ErrFileTooLarge,
		ErrEmptyFile,
		ErrLegacyXLS,
		ErrEmptySpreadsheet,
		fmt.Errorf("%w: zip: not a valid zip file", ErrUnreadableSpreadsheet),
	}
	seen := map[string]bool{}
	for _, err := range errs {
		msg := UploadErrorMessage(err)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
}
