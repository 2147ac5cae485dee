package db

import "time"

const (
	PhasePrompt     = "PROMPT"
	PhaseGenerating = "GENERATING"
	PhaseReveal     = "REVEAL"
	PhaseResults    = "RESULTS"
)

type Round struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	RoomID      string `gorm:"type:uuid;index;not null;uniqueIndex:idx_rounds_room_number"`
	RoundNumber int    `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	Phase       string `gorm:"size:16;not null"`
	PromptText  string `gorm:"size:280;not null"`
	PhaseEndsAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Submissions []Submission
	Votes       []Vote
}
