package models

import "time"

type Contact struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	CompanyID       *string `gorm:"type:uuid;index"`
	Name            string  `gorm:"size:255;not null"`
	Role            string  `gorm:"size:255"`
	Email           string  `gorm:"size:320"`
	Phone           string  `gorm:"size:64"`
	NormalizedEmail string  `gorm:"size:320;index"`
	NormalizedPhone string  `gorm:"size:32;index"`
	LinkedIn        string  `gorm:"column:linkedin;size:512"`
	LeadSource      string  `gorm:"size:255"`
	CompanyName     string  `gorm:"size:255"`
	City            string  `gorm:"size:120"`
	Industry        string  `gorm:"size:120"`
	Sheet           string  `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Contact) TableName() string {
	return "contacts"
}

type Company struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Domain    string `gorm:"size:255;index"`
	Industry  string `gorm:"size:120"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Company) TableName() string {
	return "companies"
}
