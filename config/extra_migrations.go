package config

import "gorm.io/gorm"

// CreateRegistrationContactIndexes adds partial indexes used by the import
// duplicate lookup. Soft-deleted registrations are excluded so that a removed
// contact can be imported again.
func CreateRegistrationContactIndexes(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_registrations_email_active
		ON registrations (lower(email))
		WHERE deleted_at IS NULL;
		CREATE INDEX IF NOT EXISTS idx_registrations_mobile_active
		ON registrations (mobile_number)
		WHERE deleted_at IS NULL;
	`).Error
}
