package ioexport

import "time"

// LoadRun is an audit record of one export.
type LoadRun struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	// BuildRunID is the run id of the warehouse manifest, if present.
	BuildRunID string `gorm:"type:varchar(36)"`

	Target    string `gorm:"type:varchar(20);not null"`
	Tables    int    `gorm:"not null"`
	Failed    int    `gorm:"not null"`
	RowCount  int64  `gorm:"not null"`
	StartedAt time.Time
	Duration  string `gorm:"type:varchar(50)"`
}

// TableName overrides the default GORM table name.
func (LoadRun) TableName() string {
	return "load_runs"
}
