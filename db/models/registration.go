package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BusinessType string

const (
	BusinessTypeB2B  BusinessType = "B2B"
	BusinessTypeB2C  BusinessType = "B2C"
	BusinessTypeBoth BusinessType = "Both"
)

type AddedViaType string

const (
	SingleAddedViaType AddedViaType = "single"
	BulkAddedViaType   AddedViaType = "bulk"
)

// Registration is a registered trade user (DMC, agent, supplier) of the console.
type Registration struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primary_key;" json:"_id"`
	Name               string                      `gorm:"not null" json:"name"`
	Email              string                      `gorm:"not null;index" json:"email"`
	MobileNumber       string                      `gorm:"not null;index" json:"mobile_number"`
	BusinessName       string                      `json:"business_name"`
	BusinessType       BusinessType                `gorm:"type:varchar(10)" json:"business_type"`
	Country            string                      `json:"country"`
	State              string                      `json:"state"`
	City               string                      `json:"city"`
	Address            string                      `gorm:"type:text" json:"address"`
	Regions            datatypes.JSONSlice[string] `json:"regions"`
	DMCSpecializations datatypes.JSONSlice[string] `json:"dmc_specializations"`
	Extra              datatypes.JSONMap           `json:"extra,omitempty"`
	IsActive           bool                        `gorm:"default:true" json:"isActive"`
	IsMember           bool                        `gorm:"default:false" json:"isMember"`
	AddedVia           AddedViaType                `gorm:"type:varchar(10)" json:"added_via"`
	ImportRunID        *uuid.UUID                  `gorm:"type:uuid;index" json:"import_run_id,omitempty"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
