package repositories

import (
	"context"
	"fmt"
	"strings"

	"registration-backend/db/models"

	"gorm.io/gorm"
)

type RegistrationRepository interface {
	Ping(ctx context.Context) error
	ContactExists(ctx context.Context, email, mobileNumber string) (emailTaken, mobileTaken bool, err error)
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	EachRegistrationBatch(ctx context.Context, size int, fn func([]models.Registration) error) error
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// ContactExists reports whether an active registration holds the email
// (case-insensitive) and whether one holds the mobile number. The two are
// checked separately so either match is always reported.
func (r *registrationRepository) ContactExists(ctx context.Context, email, mobileNumber string) (bool, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	mobileNumber = strings.TrimSpace(mobileNumber)

	var emailTaken, mobileTaken bool
	var err error
	if email != "" {
		if emailTaken, err = r.exists(ctx, "lower(email) = ?", email); err != nil {
			return false, false, err
		}
	}
	if mobileNumber != "" {
		if mobileTaken, err = r.exists(ctx, "mobile_number = ?", mobileNumber); err != nil {
			return false, false, err
		}
	}
	return emailTaken, mobileTaken, nil
}

func (r *registrationRepository) exists(ctx context.Context, condition, value string) (bool, error) {
	var hits []models.Registration
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Select("id").
		Where(condition, value).
		Limit(1).
		Find(&hits).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing contacts: %w", err)
	}
	return len(hits) > 0, nil
}

func (r *registrationRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("failed to create registration in database: %w", err)
	}
	return nil
}

// EachRegistrationBatch walks all active registrations in id order, size at a time.
func (r *registrationRepository) EachRegistrationBatch(ctx context.Context, size int, fn func([]models.Registration) error) error {
	var batch []models.Registration
	result := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	if result.Error != nil {
		return fmt.Errorf("failed to walk registrations: %w", result.Error)
	}
	return nil
}
