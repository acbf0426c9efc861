package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"registration-backend/db/models"
)

// memStore is an in-memory RegistrationStore.
type memStore struct {
	mu         sync.Mutex
	records    []models.Registration
	pingErr    error
	lookupErr  error
	createErrs map[string]error // keyed by email
	lookups    int
}

func newMemStore(existing ...models.Registration) *memStore {
	return &memStore{records: existing, createErrs: map[string]error{}}
}

func (s *memStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func (s *memStore) ContactExists(ctx context.Context, email, mobileNumber string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.lookupErr != nil {
		return false, false, s.lookupErr
	}
	var emailTaken, mobileTaken bool
	for _, r := range s.records {
		if email != "" && strings.EqualFold(r.Email, email) {
			emailTaken = true
		}
		if mobileNumber != "" && r.MobileNumber == mobileNumber {
			mobileTaken = true
		}
	}
	return emailTaken, mobileTaken, nil
}

func (s *memStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErrs[reg.Email]; err != nil {
		return err
	}
	s.records = append(s.records, *reg)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type recordingIndexer struct {
	indexed []models.Registration
	err     error
}

func (i *recordingIndexer) IndexRegistration(reg models.Registration) error {
	i.indexed = append(i.indexed, reg)
	return i.err
}

var errStorage = errors.New("insert failed: connection reset")
