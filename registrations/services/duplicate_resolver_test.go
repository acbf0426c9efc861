package services

import (
	"context"
	"testing"

	"registration-backend/db/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateResolverExistingRecord(t *testing.T) {
	store := newMemStore(models.Registration{Email: "Taken@X.com", MobileNumber: "1111111111"})
	resolver := NewDuplicateResolver(store)

	match, dup, err := resolver.IsDuplicate(context.Background(), CandidateRecord{Email: "taken@x.com", MobileNumber: "9999999999"})
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, []string{FieldEmail}, match.MatchedOn)
	assert.Equal(t, DuplicateSourceExisting, match.Source)

	match, dup, err = resolver.IsDuplicate(context.Background(), CandidateRecord{Email: "new@x.com", MobileNumber: "1111111111"})
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, []string{FieldMobileNumber}, match.MatchedOn)
}

func TestDuplicateResolverBatchCheckedFirst(t *testing.T) {
	store := newMemStore()
	resolver := NewDuplicateResolver(store)
	resolver.Register(CandidateRecord{Email: "a@x.com", MobileNumber: "1111111111"})

	match, dup, err := resolver.IsDuplicate(context.Background(), CandidateRecord{Email: "A@x.com", MobileNumber: "1111111111"})
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, []string{FieldEmail, FieldMobileNumber}, match.MatchedOn)
	assert.Equal(t, DuplicateSourceBatch, match.Source)
	assert.Zero(t, store.lookups)
}

func TestDuplicateResolverNotDuplicate(t *testing.T) {
	resolver := NewDuplicateResolver(newMemStore(models.Registration{Email: "b@x.com", MobileNumber: "2"}))

	_, dup, err := resolver.IsDuplicate(context.Background(), CandidateRecord{Email: "a@x.com", MobileNumber: "1"})
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestDuplicateResolverLookupError(t *testing.T) {
	store := newMemStore()
	store.lookupErr = errStorage
	resolver := NewDuplicateResolver(store)

	_, _, err := resolver.IsDuplicate(context.Background(), CandidateRecord{Email: "a@x.com"})
	require.ErrorIs(t, err, errStorage)
}

func TestDuplicateResolversAreIsolated(t *testing.T) {
	store := newMemStore()
	first := NewDuplicateResolver(store)
	first.Register(CandidateRecord{Email: "a@x.com", MobileNumber: "1"})

	second := NewDuplicateResolver(store)
	_, dup, err := second.IsDuplicate(context.Background(), CandidateRecord{Email: "a@x.com", MobileNumber: "1"})
	require.NoError(t, err)
	assert.False(t, dup)
}
