// Package model defines database models
package model

import "time"

// Principal is a verified end-user identity (an email address)
type Principal string

func (p Principal) String() string {
	return string(p)
}

type File struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	DisplayName string    `gorm:"not null" json:"name"`                          // Sanitized name, presentation only
	StorageKey  string    `gorm:"uniqueIndex;not null" json:"-"`                 // Avoids file name conflicts
	Owner       Principal `gorm:"index;not null" json:"owner"`                   // Never changes after upload
	ContentType string    `json:"content_type"`                                  // Sniffed server-side
	Size        int64     `json:"size"`
	CreatedAt   time.Time `gorm:"index;not null;autoCreateTime:false" json:"created_at"`
}
