package controllers

import (
	"registration-backend/config"
	"registration-backend/registrations/repositories"
	"registration-backend/registrations/services"
	"registration-backend/utils"
)

const (
	// importLockKey serializes commits against the registrations table.
	importLockKey = "import:registrations"
	// importRunsResource prefixes cached import run listings.
	importRunsResource = "import_runs"
)

// CacheInvalidator drops cached listings of a resource.
type CacheInvalidator interface {
	InvalidateCacheAsync(resourceType string)
}

// ImportController serves the preview/import flow of registration spreadsheets.
// Indexer, Reports, Cache and RunsCache are optional.
type ImportController struct {
	Catalog   *services.Catalog
	Settings  config.ImportSettings
	Storage   utils.FileStorage
	Uploads   utils.UploadRegistry
	Lock      utils.ImportLock
	Store     services.RegistrationStore
	Runs      repositories.ImportRunRepository
	Indexer   services.RegistrationIndexer
	Reports   services.ReportQueue
	Cache     CacheInvalidator
	RunsCache utils.QueryCache
	BaseURL   string
}
