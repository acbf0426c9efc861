package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogRejectsDuplicateKeys(t *testing.T) {
	_, err := NewCatalog(
		FieldDescriptor{Key: "email", Label: "Email"},
		FieldDescriptor{Key: "email", Label: "Email again"},
	)
	require.ErrorIs(t, err, ErrDuplicateFieldKey)
}

func TestDefaultCatalogRequiredFields(t *testing.T) {
	catalog := DefaultRegistrationCatalog()

	var keys []string
	for _, f := range catalog.Required() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{FieldName, FieldEmail, FieldMobileNumber}, keys)

	missing := catalog.UnmappedRequired(ColumnMapping{FieldName: "Name", FieldEmail: " "})
	require.Len(t, missing, 2)
	assert.Equal(t, FieldEmail, missing[0].Key)
	assert.Equal(t, FieldMobileNumber, missing[1].Key)
}

func TestFieldDescriptorJSONHidesAliases(t *testing.T) {
	field, ok := DefaultRegistrationCatalog().Lookup(FieldBusinessType)
	require.True(t, ok)

	encoded, err := json.Marshal(field)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "business_type", decoded["key"])
	assert.Equal(t, "enum-list", decoded["type"])
	assert.NotContains(t, decoded, "aliases")
	assert.NotContains(t, decoded, "Aliases")
}
