package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileStorage interface {
	UploadFileFromReader(src io.Reader, fileName string) (string, error)
	DownloadFile(fileName string) (io.ReadCloser, error)
	DeleteFile(fileName string) error
	FileExists(fileName string) (bool, error)
	Path(fileName string) string
}

type LocalFileStorage struct {
	uploadPath string
}

func NewLocalFileStorage(uploadPath string) *LocalFileStorage {
	return &LocalFileStorage{uploadPath: uploadPath}
}

// Path resolves a stored file name inside the upload directory. Directory
// components in fileName are discarded.
func (s *LocalFileStorage) Path(fileName string) string {
	return filepath.Join(s.uploadPath, filepath.Base(strings.TrimSpace(fileName)))
}

// UploadFileFromReader handles file uploads from any io.Reader
func (s *LocalFileStorage) UploadFileFromReader(src io.Reader, fileName string) (string, error) {
	if err := EnsureDirectoryExists(s.uploadPath); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filePath := s.Path(fileName)
	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Clean up on error
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	return filePath, nil
}

// DownloadFile retrieves a file for reading
func (s *LocalFileStorage) DownloadFile(fileName string) (io.ReadCloser, error) {
	file, err := os.Open(s.Path(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// DeleteFile removes a file from storage
func (s *LocalFileStorage) DeleteFile(fileName string) error {
	err := os.Remove(s.Path(fileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileExists checks if a file exists in storage
func (s *LocalFileStorage) FileExists(fileName string) (bool, error) {
	_, err := os.Stat(s.Path(fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}
