package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ImportRun is the audit record of one completed registration import.
type ImportRun struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;" json:"id"`
	FileName      string            `json:"file_name"`
	FileHash      string            `gorm:"index" json:"file_hash"`
	ColumnMapping datatypes.JSONMap `json:"column_mapping"`
	Total         int               `json:"total"`
	Created       int               `json:"created"`
	Skipped       int               `json:"skipped"`
	Duplicates    int               `json:"duplicates"`
	MissingFields int               `json:"missing_fields"`
	Other         int               `json:"other"`
	Cancelled     int               `json:"cancelled"`
	ReportPath    string            `json:"report_path"`
	CreatedBy     string            `gorm:"not null" json:"created_by"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// ImportSkippedRow records why one spreadsheet row was not imported.
type ImportSkippedRow struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	ImportRunID uuid.UUID      `gorm:"type:uuid;index;not null" json:"import_run_id"`
	Row         int            `json:"row"`
	Line        int            `json:"line"`
	Reason      string         `json:"reason"`
	Detail      datatypes.JSON `json:"detail"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
