package bootstrap

import (
	"context"
	"testing"

	bleveRepositories "registration-backend/bleve/repositories"
	bleveServices "registration-backend/bleve/services"
	"registration-backend/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceSource struct {
	registrations []models.Registration
}

func (s sliceSource) EachRegistrationBatch(ctx context.Context, size int, fn func([]models.Registration) error) error {
	for start := 0; start < len(s.registrations); start += size {
		end := start + size
		if end > len(s.registrations) {
			end = len(s.registrations)
		}
		if err := fn(s.registrations[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func TestIndexBleveDataIndexesEveryRegistration(t *testing.T) {
	indexer := bleveServices.NewIndexingService(zap.NewNop(), t.TempDir())
	defer indexer.Close()
	_, repo := bleveRepositories.NewBleveRepository(indexer)

	source := sliceSource{registrations: []models.Registration{
		{ID: uuid.New(), Name: "Asha", Email: "asha@x.com", MobileNumber: "1"},
		{ID: uuid.New(), Name: "Ben", Email: "ben@x.com", MobileNumber: "2"},
	}}

	IndexBleveData(context.Background(), source, repo)

	result, err := repo.SearchRegistrations("ben", 10)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, source.registrations[1].ID.String(), result.Hits[0].ID)
}
