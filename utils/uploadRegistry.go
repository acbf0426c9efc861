package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrUploadNotFound = errors.New("upload not found or expired")

// UploadRecord describes a previewed upload waiting for its import.
type UploadRecord struct {
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	Extension    string    `json:"extension"`
	FileHash     string    `json:"file_hash"`
	UploadedBy   string    `json:"uploaded_by"`
	TotalRows    int       `json:"total_rows"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// UploadRegistry maps opaque upload handles to stored files.
type UploadRegistry interface {
	Register(ctx context.Context, handle string, record UploadRecord) error
	Resolve(ctx context.Context, handle string) (UploadRecord, error)
}

type RedisUploadRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUploadRegistry(client *redis.Client, ttl time.Duration) *RedisUploadRegistry {
	return &RedisUploadRegistry{client: client, ttl: ttl}
}

func uploadKey(handle string) string {
	return "import:upload:" + handle
}

func (r *RedisUploadRegistry) Register(ctx context.Context, handle string, record UploadRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode upload record: %w", err)
	}
	if err := r.client.Set(ctx, uploadKey(handle), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register upload: %w", err)
	}
	return nil
}

func (r *RedisUploadRegistry) Resolve(ctx context.Context, handle string) (UploadRecord, error) {
	var record UploadRecord
	payload, err := r.client.Get(ctx, uploadKey(handle)).Bytes()
	if err == redis.Nil {
		return record, ErrUploadNotFound
	}
	if err != nil {
		return record, fmt.Errorf("failed to resolve upload: %w", err)
	}
	if err := json.Unmarshal(payload, &record); err != nil {
		return record, fmt.Errorf("failed to decode upload record: %w", err)
	}
	return record, nil
}
