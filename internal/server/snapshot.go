package server

import (
	"errors"

	"ai-pictionary/internal/db"
)

// roomSnapshot builds the full room view pushed to websocket clients and
// returned by GET /api/rooms/{joinCode}. Clients re-render from the whole
// snapshot; there is no incremental diffing.
func (s *Server) roomSnapshot(room *db.Room) (map[string]any, error) {
	var players []db.Player
	if err := s.db.Where("room_id = ?", room.ID).Order("created_at asc").Find(&players).Error; err != nil {
		return nil, err
	}
	playerViews := make([]map[string]any, 0, len(players))
	for _, player := range players {
		playerViews = append(playerViews, map[string]any{
			"playerId":    player.ID,
			"displayName": player.DisplayName,
			"isHost":      player.IsHost,
			"isReady":     player.IsReady,
			"isActive":    player.IsActive,
		})
	}

	snapshot := map[string]any{
		"roomId":           room.ID,
		"joinCode":         room.JoinCode,
		"status":           room.Status,
		"maxPlayers":       room.MaxPlayers,
		"isFamilyFriendly": room.IsFamilyFriendly,
		"totalRounds":      room.TotalRounds,
		"roundSeconds":     room.RoundSeconds,
		"endedAt":          room.EndedAt,
		"players":          playerViews,
		"round":            nil,
	}

	round, err := s.latestRound(room.ID)
	if err != nil {
		if errors.Is(err, errRoundNotFound) {
			return snapshot, nil
		}
		return nil, err
	}
	var submissionCount int64
	if err := s.db.Model(&db.Submission{}).Where("round_id = ?", round.ID).Count(&submissionCount).Error; err != nil {
		return nil, err
	}
	view := roundPayload(round)
	view["submissionCount"] = submissionCount
	snapshot["round"] = view
	return snapshot, nil
}
