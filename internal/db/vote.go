package db

import "time"

// Votes are cleared by rematch; no handler writes them yet.
type Vote struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	RoomID       string    `gorm:"type:uuid;index;not null"`
	RoundID      string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_votes_round_voter"`
	VoterID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_votes_round_voter"`
	SubmissionID string    `gorm:"type:uuid;index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
