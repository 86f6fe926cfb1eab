package model

import "time"

// User represents a registered account of the reservation platform.
// Email is stored exactly as supplied and is unique; comparisons are case
// sensitive, which on MySQL relies on the binary collation set by db.Migrate.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
