package server

import (
	"errors"
	"log"
	"net/http"

	"ai-pictionary/internal/db"
)

type readyRequest struct {
	JoinCode string `json:"joinCode"`
	PlayerID string `json:"playerId"`
	Ready    *bool  `json:"ready"`
}

// handleReady toggles (or sets) the caller's ready flag. When every active
// player in a lobby is ready the first round starts automatically; the
// LOBBY→IN_GAME conditional update guarantees a single starter under
// concurrent ready calls.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req readyRequest
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

	ready := !player.IsReady
	if req.Ready != nil {
		ready = *req.Ready
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", player.ID).
		Update("is_ready", ready).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("ready toggled room_id=%s player_id=%s ready=%t", room.ID, player.ID, ready)

	resp := map[string]any{"ok": true, "autoStarted": false}
	if ready && room.Status == db.RoomStatusLobby {
		round, started, err := s.tryAutoStart(r, room)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if started {
			resp["autoStarted"] = true
			resp["round"] = roundPayload(round)
		}
	}
	writeJSON(w, http.StatusOK, resp)
	s.broadcastRoomUpdate(room.ID)
}

// tryAutoStart begins round 1 when every active player is ready. The room
// status CAS makes the check idempotent: once a round exists the room has
// left LOBBY and later ready calls cannot re-fire it.
func (s *Server) tryAutoStart(r *http.Request, room *db.Room) (*db.Round, bool, error) {
	players, err := s.activePlayers(room.ID)
	if err != nil {
		return nil, false, err
	}
	if len(players) == 0 {
		return nil, false, nil
	}
	for _, player := range players {
		if !player.IsReady {
			return nil, false, nil
		}
	}

	result := s.db.Model(&db.Room{}).
		Where("id = ? AND status = ?", room.ID, db.RoomStatusLobby).
		Update("status", db.RoomStatusInGame)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	round, err := s.beginRound(r.Context(), room, 1)
	if err != nil {
		if errors.Is(err, errRoundExists) {
			return nil, false, nil
		}
		return nil, false, err
	}
	log.Printf("auto-start room_id=%s players=%d", room.ID, len(players))
	return round, true, nil
}
