package utils

import (
	"strings"
)

// PublicFileURL builds the download link of a file served from /public/files.
func PublicFileURL(baseURL, fileName string) string {
	return strings.TrimSuffix(baseURL, "/") + "/public/files/" + strings.TrimPrefix(fileName, "/")
}
