package model

import "time"

// AccessLog is written once for every download that reaches byte transfer.
// Entries are never updated or deleted.
type AccessLog struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	FileID    string    `gorm:"index;not null" json:"file_id"`
	Viewer    Principal `gorm:"index;not null" json:"viewer"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}
