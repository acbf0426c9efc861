package bootstrap

import (
	"context"

	bleveRepositories "registration-backend/bleve/repositories"
	"registration-backend/config"
	"registration-backend/db/models"

	"go.uber.org/zap"
)

// RegistrationSource walks stored registrations in batches.
type RegistrationSource interface {
	EachRegistrationBatch(ctx context.Context, size int, fn func([]models.Registration) error) error
}

const reindexBatchSize = 500

// IndexBleveData re-indexes every stored registration. Documents are
// overwritten by id, so running it on every start is safe.
func IndexBleveData(
	ctx context.Context,
	registrationRepo RegistrationSource,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) {
	indexed := 0
	err := registrationRepo.EachRegistrationBatch(ctx, reindexBatchSize, func(batch []models.Registration) error {
		if err := bleveRepo.IndexExistingRegistrations(batch); err != nil {
			return err
		}
		indexed += len(batch)
		return nil
	})
	if err != nil {
		config.Logger.Error("Failed to index registrations into Bleve", zap.Int("indexed", indexed), zap.Error(err))
		return
	}
	config.Logger.Info("Bleve registration index rebuilt", zap.Int("indexed", indexed))
}
