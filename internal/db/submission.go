package db

import "time"

type Submission struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	RoomID      string    `gorm:"type:uuid;index;not null"`
	RoundID     string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_submissions_round_player"`
	PlayerID    string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_submissions_round_player"`
	PromptInput string    `gorm:"size:280;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
