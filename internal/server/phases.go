package server

import (
	"time"

	"ai-pictionary/internal/db"
)

const defaultRoundSeconds = 45

// nextPhase returns the phase that follows current, or false when the round
// is already in its terminal phase.
func nextPhase(current string) (string, bool) {
	switch current {
	case db.PhasePrompt:
		return db.PhaseGenerating, true
	case db.PhaseGenerating:
		return db.PhaseReveal, true
	case db.PhaseReveal:
		return db.PhaseResults, true
	default:
		return "", false
	}
}

// phaseDeadline computes the phase_ends_at value for the phase being entered.
// GENERATING runs on the room's submission clock; REVEAL and RESULTS have no
// deadline and clear the column.
func phaseDeadline(room *db.Room, phase string, now time.Time) *time.Time {
	if phase != db.PhaseGenerating {
		return nil
	}
	seconds := room.RoundSeconds
	if seconds <= 0 {
		seconds = defaultRoundSeconds
	}
	deadline := now.Add(time.Duration(seconds) * time.Second)
	return &deadline
}

// transitionRound is the compare-and-swap primitive every phase change goes
// through: the update applies only while the round's phase still equals
// expected. Zero rows affected means another caller already advanced the
// round and is treated as a benign no-op.
func (s *Server) transitionRound(roundID, expected string, updates map[string]any) (bool, error) {
	result := s.db.Model(&db.Round{}).
		Where("id = ? AND phase = ?", roundID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// endRoom marks the room ENDED, guarded against concurrent callers racing the
// final transition.
func (s *Server) endRoom(roomID string, at time.Time) (bool, error) {
	result := s.db.Model(&db.Room{}).
		Where("id = ? AND status = ?", roomID, db.RoomStatusInGame).
		Updates(map[string]any{"status": db.RoomStatusEnded, "ended_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
