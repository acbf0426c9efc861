package repositories

import (
	bleveindex "registration-backend/bleve/services"
	"registration-backend/db/models"

	"github.com/blevesearch/bleve/v2"
)

const registrationsIndex = "registrations"

type BleveRepository struct {
	indexer bleveindex.IndexingServiceInterface
}

type BleveRepositoryInterface interface {
	// ==== Registration Indexing ====
	IndexRegistration(registration models.Registration) error
	IndexExistingRegistrations(registrations []models.Registration) error
	SearchRegistrations(queryString string, size int) (*bleve.SearchResult, error)
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer bleveindex.IndexingServiceInterface) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}
