package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"registration-backend/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const maxRetries = 3

var retryDelay = 2 * time.Minute

// CleanupExpiredFiles removes regular files in dir older than ttl and returns
// how many were deleted. A missing directory is not an error.
func CleanupExpiredFiles(dir string, ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= ttl {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("error deleting expired file %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// RunScheduledCleanup purges expired uploads and reports daily at 1 AM,
// retrying failed passes. The caller stops the returned scheduler.
func RunScheduledCleanup(dirs []string, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("0 1 * * *", func() {
		for _, dir := range dirs {
			for attempt := 1; attempt <= maxRetries; attempt++ {
				removed, err := CleanupExpiredFiles(dir, ttl)
				if err == nil {
					config.Logger.Info("Cleanup finished", zap.String("dir", dir), zap.Int("removed", removed))
					break
				}
				config.Logger.Warn("Cleanup failed", zap.String("dir", dir), zap.Int("attempt", attempt), zap.Error(err))
				if attempt == maxRetries {
					config.Logger.Error("Cleanup task failed after retries", zap.String("dir", dir))
					break
				}
				time.Sleep(retryDelay)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	c.Start()
	return c, nil
}
