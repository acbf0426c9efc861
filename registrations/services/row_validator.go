package services

import (
	"strings"
)

// ValidationFailure reports the required fields a row left blank.
type ValidationFailure struct {
	MissingFields []string
}

func (e *ValidationFailure) Error() string {
	return "missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// ExtractRow reads every catalog field from row through mapping. Fields the
// mapping does not assign read as blank. Only presence of required fields is
// checked; formats are normalized but never rejected.
func ExtractRow(row RawRow, mapping ColumnMapping, catalog *Catalog) (CandidateRecord, error) {
	var record CandidateRecord
	var missing []string

	for _, field := range catalog.Fields() {
		var raw string
		if column, ok := mapping[field.Key]; ok && column != "" {
			raw = row[column]
		}

		value, list := normalizeValue(field, raw)
		blank := value == ""
		if field.Kind == KindIdentifierList {
			blank = len(list) == 0
		}
		if blank {
			if field.Required {
				missing = append(missing, field.Key)
			}
			continue
		}

		record.set(field.Key, value, list)
	}

	if len(missing) > 0 {
		return CandidateRecord{}, &ValidationFailure{MissingFields: missing}
	}
	return record, nil
}

func normalizeValue(field FieldDescriptor, raw string) (string, []string) {
	value := strings.TrimSpace(raw)
	switch field.Kind {
	case KindEmail:
		return strings.ToLower(value), nil
	case KindPhone:
		return normalizePhone(value), nil
	case KindEnumList:
		return canonicalOption(field.Options, value), nil
	case KindIdentifierList:
		list := splitIdentifiers(value)
		return strings.Join(list, ","), list
	default:
		return value, nil
	}
}

var phoneNoise = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "\u00a0", "")

func normalizePhone(value string) string {
	return phoneNoise.Replace(value)
}

var flagSynonyms = map[string]string{
	"true": "true", "yes": "true", "y": "true", "1": "true", "active": "true",
	"false": "false", "no": "false", "n": "false", "0": "false", "inactive": "false",
}

// canonicalOption returns the option matching value case-insensitively, or
// value unchanged when nothing matches.
func canonicalOption(options []string, value string) string {
	if value == "" {
		return ""
	}
	if isFlag(options) {
		if canonical, ok := flagSynonyms[strings.ToLower(value)]; ok {
			return canonical
		}
		return value
	}
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt
		}
	}
	return value
}

func isFlag(options []string) bool {
	return len(options) == 2 && options[0] == "true" && options[1] == "false"
}

func splitIdentifiers(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	seen := make(map[string]struct{}, len(parts))
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (c *CandidateRecord) set(key, value string, list []string) {
	switch key {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldMobileNumber:
		c.MobileNumber = value
	case FieldBusinessName:
		c.BusinessName = value
	case FieldBusinessType:
		c.BusinessType = value
	case FieldCountry:
		c.Country = value
	case FieldState:
		c.State = value
	case FieldCity:
		c.City = value
	case FieldAddress:
		c.Address = value
	case FieldRegions:
		c.Regions = list
	case FieldDMCSpecializations:
		c.DMCSpecializations = list
	case FieldIsActive:
		c.IsActive = parseFlag(value)
	case FieldIsMember:
		c.IsMember = parseFlag(value)
	default:
		if c.Extra == nil {
			c.Extra = map[string]string{}
		}
		c.Extra[key] = value
	}
}

func parseFlag(value string) *bool {
	switch value {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
