package server

import (
	"errors"
	"log"
	"net/http"

	"ai-pictionary/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type submitRequest struct {
	JoinCode    string `json:"joinCode"`
	PlayerID    string `json:"playerId"`
	PromptInput string `json:"promptInput"`
}

// handleSubmit upserts the caller's submission for the current round. The
// (round_id, player_id) conflict target is the only guard for one submission
// per player per round; resubmitting overwrites the previous text.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	input, err := validateSubmission(req.PromptInput)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
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
	round, err := s.latestRound(room.ID)
	if err != nil {
		if errors.Is(err, errRoundNotFound) {
			writeError(w, http.StatusBadRequest, "round not started")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if round.Phase != db.PhaseGenerating {
		writeError(w, http.StatusBadRequest, "submissions are only accepted during the generating phase")
		return
	}

	submission := db.Submission{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		RoundID:     round.ID,
		PlayerID:    player.ID,
		PromptInput: input,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"prompt_input", "updated_at"}),
	}).Create(&submission).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// On conflict the original row keeps its id; read it back so the caller
	// always sees the canonical submission id.
	var stored db.Submission
	if err := s.db.Where("round_id = ? AND player_id = ?", round.ID, player.ID).
		First(&stored).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistEvent(room, "submission_received", EventPayload{
		RoundID:  round.ID,
		PlayerID: player.ID,
	})
	log.Printf("submission received room_id=%s round=%d player_id=%s", room.ID, round.RoundNumber, player.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "submissionId": stored.ID})
	s.broadcastRoomUpdate(room.ID)
}
