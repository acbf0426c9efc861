package utils

import (
	"time"

	"registration-backend/config"
)

// DateLocation is the application's timezone
var DateLocation = time.UTC

// InitializeDateLocation sets up the application's timezone from DB_TIMEZONE.
func InitializeDateLocation() error {
	loc, err := time.LoadLocation(config.GetEnvDefault("DB_TIMEZONE", "UTC"))
	if err != nil {
		return err
	}
	DateLocation = loc
	return nil
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(DateLocation)
}
