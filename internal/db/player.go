package db

import "time"

type Player struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	RoomID      string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_players_room_name"`
	DisplayName string    `gorm:"size:64;not null;uniqueIndex:idx_players_room_name"`
	IsHost      bool      `gorm:"not null;default:false"`
	IsReady     bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Submissions []Submission
}
