package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"ai-pictionary/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errRoundExists = errors.New("round already started")

type roomActionRequest struct {
	JoinCode string `json:"joinCode"`
	PlayerID string `json:"playerId"`
}

// beginRound creates the next round row in the PROMPT phase, moves the room
// into IN_GAME and clears every player's ready flag. The unique
// (room_id, round_number) index backstops concurrent creation.
func (s *Server) beginRound(ctx context.Context, room *db.Room, number int) (*db.Round, error) {
	now := time.Now().UTC()
	revealFor := time.Duration(s.cfg.PromptRevealSeconds) * time.Second
	endsAt := now.Add(revealFor)
	round := db.Round{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		RoundNumber: number,
		Phase:       db.PhasePrompt,
		PromptText:  s.roundPrompt(ctx, room.IsFamilyFriendly),
		PhaseEndsAt: &endsAt,
	}
	if err := s.db.Create(&round).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errRoundExists
		}
		return nil, err
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", room.ID).
		Update("status", db.RoomStatusInGame).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Player{}).Where("room_id = ?", room.ID).
		Update("is_ready", false).Error; err != nil {
		return nil, err
	}
	s.persistEvent(room, "round_started", EventPayload{RoundID: round.ID, RoundNumber: number})
	log.Printf("round started room_id=%s round=%d", room.ID, number)
	return &round, nil
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req roomActionRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	room, player, ok := s.resolveCaller(w, req.JoinCode, req.PlayerID)
	if !ok {
		return
	}
	if !player.IsHost {
		writeError(w, http.StatusForbidden, "only the host can start a round")
		return
	}
	if room.Status == db.RoomStatusEnded {
		writeError(w, http.StatusBadRequest, "game has ended")
		return
	}

	number := 1
	latest, err := s.latestRound(room.ID)
	if err != nil && !errors.Is(err, errRoundNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest != nil {
		number = latest.RoundNumber + 1
	}
	if number > room.TotalRounds {
		writeError(w, http.StatusBadRequest, "max rounds reached")
		return
	}

	round, err := s.beginRound(r.Context(), room, number)
	if err != nil {
		if errors.Is(err, errRoundExists) {
			writeError(w, http.StatusBadRequest, "round already started")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"round": roundPayload(round)})
	s.broadcastRoomUpdate(room.ID)
}

func (s *Server) handleReroll(w http.ResponseWriter, r *http.Request) {
	var req roomActionRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	room, player, ok := s.resolveCaller(w, req.JoinCode, req.PlayerID)
	if !ok {
		return
	}
	if !player.IsHost {
		writeError(w, http.StatusForbidden, "only the host can reroll the prompt")
		return
	}
	round, err := s.latestRound(room.ID)
	if err != nil {
		if errors.Is(err, errRoundNotFound) {
			writeError(w, http.StatusBadRequest, "round not started")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if round.Phase != db.PhasePrompt {
		writeError(w, http.StatusBadRequest, "prompt can only be rerolled during the prompt phase")
		return
	}

	text := s.roundPrompt(r.Context(), room.IsFamilyFriendly)
	applied, err := s.transitionRound(round.ID, db.PhasePrompt, map[string]any{
		"prompt_text": text,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !applied {
		writeError(w, http.StatusBadRequest, "prompt can only be rerolled during the prompt phase")
		return
	}
	round.PromptText = text
	s.persistEvent(room, "prompt_rerolled", EventPayload{RoundID: round.ID, PlayerID: player.ID})
	log.Printf("prompt rerolled room_id=%s round=%d", room.ID, round.RoundNumber)
	writeJSON(w, http.StatusOK, map[string]any{"round": roundPayload(round)})
	s.broadcastRoomUpdate(room.ID)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req roomActionRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	room, player, ok := s.resolveCaller(w, req.JoinCode, req.PlayerID)
	if !ok {
		return
	}
	if !player.IsActive {
		writeError(w, http.StatusBadRequest, "player is inactive")
		return
	}
	if room.Status != db.RoomStatusInGame {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": false})
		return
	}
	round, err := s.latestRound(room.ID)
	if err != nil {
		if errors.Is(err, errRoundNotFound) {
			writeError(w, http.StatusBadRequest, "round not started")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	next, ok := nextPhase(round.Phase)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": false, "phase": round.Phase})
		return
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"phase":         next,
		"phase_ends_at": phaseDeadline(room, next, now),
	}
	applied, err := s.transitionRound(round.ID, round.Phase, updates)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !applied {
		// Lost the race; another caller's timer fired first.
		phase := round.Phase
		if current, err := s.latestRound(room.ID); err == nil {
			phase = current.Phase
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": false, "phase": phase})
		return
	}

	if next == db.PhaseResults && round.RoundNumber >= room.TotalRounds {
		ended, err := s.endRoom(room.ID, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if ended {
			s.persistEvent(room, "room_ended", EventPayload{RoundID: round.ID})
			log.Printf("room ended room_id=%s rounds=%d", room.ID, round.RoundNumber)
		}
	}
	s.persistEvent(room, "phase_advanced", EventPayload{
		RoundID:  round.ID,
		PlayerID: player.ID,
		Phase:    next,
	})
	log.Printf("phase advanced room_id=%s round=%d from=%s to=%s", room.ID, round.RoundNumber, round.Phase, next)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": true, "phase": next})
	s.broadcastRoomUpdate(room.ID)
}

func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	var req roomActionRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	room, player, ok := s.resolveCaller(w, req.JoinCode, req.PlayerID)
	if !ok {
		return
	}
	if !player.IsHost {
		writeError(w, http.StatusForbidden, "only the host can start a rematch")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&db.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&db.Round{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&db.Score{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.Room{}).Where("id = ?", room.ID).
			Updates(map[string]any{"status": db.RoomStatusLobby, "ended_at": nil}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Player{}).Where("room_id = ?", room.ID).
			Update("is_ready", false).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistEvent(room, "rematch", EventPayload{PlayerID: player.ID})
	log.Printf("rematch room_id=%s", room.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	s.broadcastRoomUpdate(room.ID)
}

func roundPayload(round *db.Round) map[string]any {
	payload := map[string]any{
		"roundId":     round.ID,
		"roundNumber": round.RoundNumber,
		"phase":       round.Phase,
		"promptText":  round.PromptText,
	}
	if round.PhaseEndsAt != nil {
		payload["phaseEndsAt"] = round.PhaseEndsAt.UTC()
	} else {
		payload["phaseEndsAt"] = nil
	}
	return payload
}
