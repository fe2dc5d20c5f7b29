package contact

import "strings"

// RawRow is one row as handed over by a spreadsheet or JSON-body producer:
// a flat string map plus the row's 1-based position in the submitted batch
// and the sheet/origin label it came from.
type RawRow struct {
	Index  int
	Sheet  string
	Fields map[string]string
}

// Get returns the first non-empty value among the given field aliases,
// trimmed. Lookup is case-insensitive on the field name.
func (r RawRow) Get(aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := r.Fields[alias]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	for _, alias := range aliases {
		for key, v := range r.Fields {
			if strings.EqualFold(strings.TrimSpace(key), alias) {
				if trimmed := strings.TrimSpace(v); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// NormalizedRow is a RawRow after field extraction and key normalization.
// It is transient: built per import run, never persisted.
type NormalizedRow struct {
	Raw             RawRow
	Name            string
	Role            string
	Email           string
	Phone           string
	LinkedIn        string
	City            string
	Industry        string
	CompanyName     string
	NormalizedEmail string
	NormalizedPhone string
	Domain          string
	LeadSource      string
	CompanyID       *string
}

// NormalizeRow extracts the known contact fields from a raw row and derives
// the dedup keys. Lead source falls back from the explicit field to the
// source alias to the sheet label.
func NormalizeRow(raw RawRow, policy PhonePolicy) NormalizedRow {
	email := raw.Get("email", "email address", "e-mail")
	phone := raw.Get("phone", "phone number", "mobile", "contact number")

	leadSource := raw.Get("lead_source", "lead source", "source")
	if leadSource == "" {
		leadSource = raw.Sheet
	}

	normalizedEmail := NormalizeEmail(email)

	return NormalizedRow{
		Raw:             raw,
		Name:            raw.Get("name", "full name", "contact name"),
		Role:            raw.Get("role", "title", "position", "designation"),
		Email:           email,
		Phone:           phone,
		LinkedIn:        raw.Get("linkedin", "linkedin url"),
		City:            raw.Get("city", "location"),
		Industry:        raw.Get("industry"),
		CompanyName:     raw.Get("company", "company name", "organization"),
		NormalizedEmail: normalizedEmail,
		NormalizedPhone: NormalizePhone(phone, policy),
		Domain:          DomainFromEmail(normalizedEmail),
		LeadSource:      leadSource,
	}
}

// NormalizeRows maps NormalizeRow over a batch, preserving order.
func NormalizeRows(raws []RawRow, policy PhonePolicy) []NormalizedRow {
	rows := make([]NormalizedRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, NormalizeRow(raw, policy))
	}
	return rows
}

// HasIdentifier reports whether the row carries at least one usable dedup
// key. Rows without one can never be matched against the store.
func (r NormalizedRow) HasIdentifier() bool {
	return r.NormalizedEmail != "" || r.NormalizedPhone != ""
}
