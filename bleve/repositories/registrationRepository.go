package repositories

import (
	"strings"

	"registration-backend/config"
	"registration-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

// registrationDocument is what gets stored in the index for each registration.
type registrationDocument struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

var registrationSearchFields = []string{"name", "email", "mobile_number", "business_name", "city"}

func toRegistrationDocument(registration models.Registration) registrationDocument {
	return registrationDocument{
		ID:           registration.ID.String(),
		Name:         registration.Name,
		Email:        registration.Email,
		MobileNumber: registration.MobileNumber,
		BusinessName: registration.BusinessName,
		BusinessType: string(registration.BusinessType),
		City:         registration.City,
		Country:      registration.Country,
	}
}

// SearchRegistrations combines exact, prefix and fuzzy matches across the
// searchable fields. Exact matches rank highest, fuzzy lowest.
func (r *BleveRepository) SearchRegistrations(queryString string, size int) (*bleve.SearchResult, error) {
	term := strings.ToLower(strings.TrimSpace(queryString))
	booleanQuery := bleve.NewBooleanQuery()

	for _, field := range registrationSearchFields {
		matchQuery := bleve.NewMatchQuery(term)
		matchQuery.SetField(field)
		matchQuery.SetBoost(3.0)
		booleanQuery.AddShould(matchQuery)

		prefixQuery := bleve.NewPrefixQuery(term)
		prefixQuery.SetField(field)
		prefixQuery.SetBoost(2.0)
		booleanQuery.AddShould(prefixQuery)

		// One edit of typo tolerance
		fuzzyQuery := bleve.NewFuzzyQuery(term)
		fuzzyQuery.SetField(field)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetBoost(1.0)
		booleanQuery.AddShould(fuzzyQuery)
	}
	booleanQuery.SetMinShould(1)

	if size <= 0 {
		size = 20
	}
	return r.indexer.SearchIndex(registrationsIndex, booleanQuery, size)
}

func (r *BleveRepository) IndexRegistration(registration models.Registration) error {
	id := registration.ID.String()
	if err := r.indexer.IndexDocument(registrationsIndex, id, toRegistrationDocument(registration)); err != nil {
		config.Logger.Error("Failed to index registration into Bleve", zap.Error(err), zap.String("registration_id", id))
		return err
	}
	return nil
}

// IndexExistingRegistrations bulk indexes registrations, used to rebuild the index on startup.
func (r *BleveRepository) IndexExistingRegistrations(registrations []models.Registration) error {
	if len(registrations) == 0 {
		config.Logger.Info("No existing registrations to index into Bleve.")
		return nil
	}

	docs := make(map[string]interface{}, len(registrations))
	for _, registration := range registrations {
		docs[registration.ID.String()] = toRegistrationDocument(registration)
	}

	if err := r.indexer.BulkIndexDocuments(registrationsIndex, docs); err != nil {
		config.Logger.Error("Failed to bulk index existing registrations into Bleve", zap.Error(err))
		return err
	}
	config.Logger.Info("Successfully bulk indexed existing registrations into Bleve", zap.Int("count", len(docs)))
	return nil
}
