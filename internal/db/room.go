package db

import "time"

const (
	RoomStatusLobby  = "LOBBY"
	RoomStatusInGame = "IN_GAME"
	RoomStatusEnded  = "ENDED"
)

type Room struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	JoinCode         string `gorm:"size:12;uniqueIndex;not null"`
	Status           string `gorm:"size:16;not null"`
	MaxPlayers       int    `gorm:"not null;default:8"`
	IsFamilyFriendly bool   `gorm:"not null;default:true"`
	TotalRounds      int    `gorm:"not null;default:3"`
	RoundSeconds     int    `gorm:"not null;default:45"`
	EndedAt          *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	Players          []Player
	Rounds           []Round
	Events           []Event
}
