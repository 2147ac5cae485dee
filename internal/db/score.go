package db

import "time"

// Scores are cleared by rematch; no handler writes them yet.
type Score struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	RoomID    string    `gorm:"type:uuid;index;not null"`
	RoundID   string    `gorm:"type:uuid;index;not null"`
	PlayerID  string    `gorm:"type:uuid;index;not null"`
	Points    int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
