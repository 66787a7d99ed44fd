package entity

import (
	"time"

	"github.com/lib/pq"
)

const (
	ExportStatusDone   = "done"
	ExportStatusFailed = "failed"
)

// ExportRecord is one export attempt, kept in the export journal.
type ExportRecord struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time
	SessionID string `gorm:"not null;type:uuid;index"`
	FileName  string `gorm:"not null"`
	Format    string `gorm:"not null"`
	Path      string
	Payload   string `gorm:"not null"`
	Size      int
	Style     string
	// Colors holds the background and foreground colors, in that order.
	Colors pq.StringArray `gorm:"type:text[]"`
	Status string         `gorm:"not null"`
	Error  string
}
