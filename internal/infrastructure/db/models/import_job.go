package models

import "time"

type ImportJob struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	UserID           string `gorm:"size:255;not null;index"`
	Status           string `gorm:"type:text;not null;index"`
	SourcePath       string `gorm:"type:text;not null"`
	TotalRecords     int64  `gorm:"not null;default:0"`
	ProcessedRecords int64  `gorm:"not null;default:0"`
	ImportedCount    int64  `gorm:"not null;default:0"`
	ErrorCount       int64  `gorm:"not null;default:0"`
	SkippedCount     int64  `gorm:"not null;default:0"`
	ErrorDetails     string `gorm:"type:jsonb;not null;default:'[]'"`
	FileName         string `gorm:"size:512"`
	FileSize         int64  `gorm:"not null;default:0"`
	UpdateExisting   bool   `gorm:"not null;default:false"`
	OnlyNew          bool   `gorm:"not null;default:false"`
	ProgressMessage  string `gorm:"type:text"`
	CancelRequested  bool   `gorm:"not null;default:false"`
	HeartbeatAt      *time.Time
	LeaseExpiresAt   *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
