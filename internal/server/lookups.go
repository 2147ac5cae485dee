package server

import (
	"errors"

	"ai-pictionary/internal/db"

	"gorm.io/gorm"
)

var (
	errRoomNotFound   = errors.New("room not found")
	errPlayerNotFound = errors.New("player not found")
	errRoundNotFound  = errors.New("round not found")
)

func (s *Server) findRoomByCode(code string) (*db.Room, error) {
	var room db.Room
	if err := s.db.Where("join_code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *Server) findPlayer(roomID, playerID string) (*db.Player, error) {
	var player db.Player
	if err := s.db.Where("room_id = ? AND id = ?", roomID, playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// latestRound returns the highest-numbered round for the room. Handlers only
// ever operate on the latest round.
func (s *Server) latestRound(roomID string) (*db.Round, error) {
	var round db.Round
	err := s.db.Where("room_id = ?", roomID).Order("round_number desc").First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

func (s *Server) activePlayers(roomID string) ([]db.Player, error) {
	var players []db.Player
	err := s.db.Where("room_id = ? AND is_active = ?", roomID, true).
		Order("created_at asc").Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}
