package repositories

import (
	"context"
	"fmt"

	"registration-backend/db/models"
	"registration-backend/utils/pagination"

	"gorm.io/gorm"
)

type ImportRunRepository interface {
	SaveImportRun(ctx context.Context, run *models.ImportRun, skipped []models.ImportSkippedRow) error
	GetImportRun(ctx context.Context, id string) (*models.ImportRun, []models.ImportSkippedRow, error)
	ListImportRuns(ctx context.Context, params pagination.PaginationParams) ([]models.ImportRun, int64, error)
	LogEmailSent(ctx context.Context, log *models.EmailLog) error
}

type importRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) ImportRunRepository {
	return &importRunRepository{db: db}
}

// SaveImportRun stores the run and its skipped rows in one transaction.
func (r *importRunRepository) SaveImportRun(ctx context.Context, run *models.ImportRun, skipped []models.ImportSkippedRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create import run: %w", err)
		}
		if len(skipped) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(skipped, 200).Error; err != nil {
			return fmt.Errorf("failed to log skipped rows: %w", err)
		}
		return nil
	})
}

func (r *importRunRepository) GetImportRun(ctx context.Context, id string) (*models.ImportRun, []models.ImportSkippedRow, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}
	var skipped []models.ImportSkippedRow
	if err := r.db.WithContext(ctx).Where("import_run_id = ?", id).Order("row asc").Find(&skipped).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load skipped rows: %w", err)
	}
	return &run, skipped, nil
}

// ListImportRuns pages through runs newest first. The created_by filter
// matches exactly.
func (r *importRunRepository) ListImportRuns(ctx context.Context, params pagination.PaginationParams) ([]models.ImportRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportRun{})
	if createdBy := params.Filters["created_by"]; createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import runs: %w", err)
	}

	var runs []models.ImportRun
	err := query.Order("created_at desc").Offset(params.Offset()).Limit(params.PageSize).Find(&runs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, total, nil
}

func (r *importRunRepository) LogEmailSent(ctx context.Context, log *models.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
