package services

import (
	"registration-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ColumnMapping assigns a catalog field key to a spreadsheet column header.
type ColumnMapping map[string]string

// RawRow holds one spreadsheet line keyed by column header.
type RawRow map[string]string

// CandidateRecord is a registration extracted from one row, not yet persisted.
type CandidateRecord struct {
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	MobileNumber       string            `json:"mobile_number"`
	BusinessName       string            `json:"business_name,omitempty"`
	BusinessType       string            `json:"business_type,omitempty"`
	Country            string            `json:"country,omitempty"`
	State              string            `json:"state,omitempty"`
	City               string            `json:"city,omitempty"`
	Address            string            `json:"address,omitempty"`
	Regions            []string          `json:"regions,omitempty"`
	DMCSpecializations []string          `json:"dmc_specializations,omitempty"`
	IsActive           *bool             `json:"isActive,omitempty"`
	IsMember           *bool             `json:"isMember,omitempty"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// ToRegistration builds the model persisted for a created row.
func (c CandidateRecord) ToRegistration(createdBy string, runID uuid.UUID) models.Registration {
	reg := models.Registration{
		ID:                 uuid.New(),
		Name:               c.Name,
		Email:              c.Email,
		MobileNumber:       c.MobileNumber,
		BusinessName:       c.BusinessName,
		BusinessType:       models.BusinessType(c.BusinessType),
		Country:            c.Country,
		State:              c.State,
		City:               c.City,
		Address:            c.Address,
		Regions:            datatypes.NewJSONSlice(nonNil(c.Regions)),
		DMCSpecializations: datatypes.NewJSONSlice(nonNil(c.DMCSpecializations)),
		IsActive:           true,
		AddedVia:           models.BulkAddedViaType,
		CreatedBy:          createdBy,
	}
	if c.IsActive != nil {
		reg.IsActive = *c.IsActive
	}
	if c.IsMember != nil {
		reg.IsMember = *c.IsMember
	}
	if len(c.Extra) > 0 {
		reg.Extra = datatypes.JSONMap{}
		for k, v := range c.Extra {
			reg.Extra[k] = v
		}
	}
	if runID != uuid.Nil {
		id := runID
		reg.ImportRunID = &id
	}
	return reg
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// SkipReason classifies a row that was not created.
type SkipReason string

const (
	SkipDuplicateUser         SkipReason = "Duplicate user"
	SkipMissingRequiredFields SkipReason = "Missing required fields"
	SkipOtherError            SkipReason = "Other error"
	SkipCancelled             SkipReason = "Cancelled"
)

// Where a duplicate was found.
const (
	DuplicateSourceExisting = "existing"
	DuplicateSourceBatch    = "batch"
)

// SkipEntry explains why one row was not imported. Only the detail fields of
// its reason are set.
type SkipEntry struct {
	Row    int        `json:"row"`
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`

	// Duplicate user
	Email        string   `json:"email,omitempty"`
	MobileNumber string   `json:"mobile_number,omitempty"`
	MatchedOn    []string `json:"matchedOn,omitempty"`
	Source       string   `json:"source,omitempty"`

	// Missing required fields
	MissingFields []string `json:"missingFields,omitempty"`

	// Other error
	Error string `json:"error,omitempty"`
}

// SkippedDetails breaks skipped rows down by reason.
type SkippedDetails struct {
	Duplicates    int `json:"duplicates"`
	MissingFields int `json:"missingFields"`
	Other         int `json:"other"`
	Cancelled     int `json:"cancelled,omitempty"`
}

// Sum is the number of skipped rows across every reason.
func (d SkippedDetails) Sum() int {
	return d.Duplicates + d.MissingFields + d.Other + d.Cancelled
}

// ImportSummary is the auditable result of one import run.
type ImportSummary struct {
	RunID          string         `json:"importId,omitempty"`
	Total          int            `json:"total"`
	Created        int            `json:"created"`
	Skipped        int            `json:"skipped"`
	SkippedDetails SkippedDetails `json:"skippedDetails"`
	SkippedRows    []SkipEntry    `json:"skippedRows"`
	Errors         []string       `json:"errors"`
	ReportLink     string         `json:"reportLink,omitempty"`
}
