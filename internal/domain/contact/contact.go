package contact

import "time"

// Contact is the persistent contact record. Email and phone are stored as
// entered; NormalizedEmail and NormalizedPhone carry the dedup keys and are
// the only fields matching is performed on.
type Contact struct {
	ID              string
	CompanyID       *string
	Name            string
	Role            string
	Email           string
	Phone           string
	NormalizedEmail string
	NormalizedPhone string
	LinkedIn        string
	LeadSource      string
	CompanyName     string
	City            string
	Industry        string
	Sheet           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Company struct {
	ID        string
	Name      string
	Domain    string
	Industry  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
