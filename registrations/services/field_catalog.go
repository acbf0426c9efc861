package services

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind tells the row validator how to read a cell for a field.
type FieldKind string

const (
	KindText           FieldKind = "text"
	KindEmail          FieldKind = "email"
	KindPhone          FieldKind = "phone"
	KindEnumList       FieldKind = "enum-list"
	KindIdentifierList FieldKind = "identifier-list"
)

// FieldDescriptor describes one importable registration attribute.
type FieldDescriptor struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Kind     FieldKind `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Aliases  []string  `json:"-"`
}

// Registration field keys.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldMobileNumber       = "mobile_number"
	FieldBusinessName       = "business_name"
	FieldBusinessType       = "business_type"
	FieldCity               = "city"
	FieldState              = "state"
	FieldCountry            = "country"
	FieldAddress            = "address"
	FieldRegions            = "regions"
	FieldDMCSpecializations = "dmc_specializations"
	FieldIsActive           = "isActive"
	FieldIsMember           = "isMember"
)

var ErrDuplicateFieldKey = errors.New("duplicate field key in catalog")

// Catalog is the ordered, immutable set of importable fields.
type Catalog struct {
	fields []FieldDescriptor
	index  map[string]int
}

// NewCatalog validates the descriptors and returns a catalog preserving their order.
func NewCatalog(fields ...FieldDescriptor) (*Catalog, error) {
	c := &Catalog{
		fields: make([]FieldDescriptor, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Key) == "" {
			return nil, errors.New("field key cannot be empty")
		}
		if _, exists := c.index[f.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFieldKey, f.Key)
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		if f.Label == "" {
			f.Label = f.Key
		}
		c.index[f.Key] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c, nil
}

// Fields returns a copy of the descriptors in catalog order.
func (c *Catalog) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(c.fields))
	copy(out, c.fields)
	return out
}

// Lookup returns the descriptor for key.
func (c *Catalog) Lookup(key string) (FieldDescriptor, bool) {
	i, ok := c.index[key]
	if !ok {
		return FieldDescriptor{}, false
	}
	return c.fields[i], true
}

// Required returns the descriptors marked required, in catalog order.
func (c *Catalog) Required() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range c.fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// UnmappedRequired lists the required fields that mapping does not assign to a column.
func (c *Catalog) UnmappedRequired(mapping ColumnMapping) []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range c.Required() {
		if strings.TrimSpace(mapping[f.Key]) == "" {
			out = append(out, f)
		}
	}
	return out
}

var flagOptions = []string{"true", "false"}

// DefaultRegistrationCatalog is the field catalog of the registration import.
func DefaultRegistrationCatalog() *Catalog {
	c, err := NewCatalog(
		FieldDescriptor{Key: FieldName, Label: "Full Name", Required: true, Kind: KindText,
			Aliases: []string{"name", "first_name", "full_name", "user_name"}},
		FieldDescriptor{Key: FieldEmail, Label: "Email", Required: true, Kind: KindEmail,
			Aliases: []string{"email", "email_id", "e_mail"}},
		FieldDescriptor{Key: FieldMobileNumber, Label: "Mobile Number", Required: true, Kind: KindPhone,
			Aliases: []string{"mobile_number", "mobile", "phone", "phone_number", "contact"}},
		FieldDescriptor{Key: FieldBusinessName, Label: "Business Name", Kind: KindText,
			Aliases: []string{"business_name", "company_name", "company", "business"}},
		FieldDescriptor{Key: FieldBusinessType, Label: "Business Type", Kind: KindEnumList,
			Options: []string{"B2B", "B2C", "Both"},
			Aliases: []string{"business_type", "registered_as"}},
		FieldDescriptor{Key: FieldCity, Label: "City", Kind: KindText},
		FieldDescriptor{Key: FieldState, Label: "State", Kind: KindText},
		FieldDescriptor{Key: FieldCountry, Label: "Country", Kind: KindText},
		FieldDescriptor{Key: FieldAddress, Label: "Address", Kind: KindText,
			Aliases: []string{"address", "registered_office_address"}},
		FieldDescriptor{Key: FieldRegions, Label: "Regions", Kind: KindIdentifierList,
			Aliases: []string{"regions", "region"}},
		FieldDescriptor{Key: FieldDMCSpecializations, Label: "DMC Specializations", Kind: KindIdentifierList,
			Aliases: []string{"dmc_specializations", "dmc_specialization"}},
		FieldDescriptor{Key: FieldIsActive, Label: "Active", Kind: KindEnumList, Options: flagOptions,
			Aliases: []string{"isActive", "is_active", "active"}},
		FieldDescriptor{Key: FieldIsMember, Label: "Member", Kind: KindEnumList, Options: flagOptions,
			Aliases: []string{"isMember", "is_member", "member"}},
	)
	if err != nil {
		panic(err)
	}
	return c
}
