package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ai-pictionary/internal/db"

	"gorm.io/datatypes"
)

type EventPayload struct {
	JoinCode    string `json:"join_code,omitempty"`
	RoundID     string `json:"round_id,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
	Phase       string `json:"phase,omitempty"`
}

// persistEvent writes an audit row. Failures are logged, never surfaced: the
// audit trail must not fail game actions.
func (s *Server) persistEvent(room *db.Room, eventType string, payload EventPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("event marshal failed room_id=%s type=%s error=%v", room.ID, eventType, err)
		return
	}
	event := db.Event{
		RoomID:  room.ID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	if payload.RoundID != "" {
		roundID := payload.RoundID
		event.RoundID = &roundID
	}
	if payload.PlayerID != "" {
		playerID := payload.PlayerID
		event.PlayerID = &playerID
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("event persist failed room_id=%s type=%s error=%v", room.ID, eventType, err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	code, err := normalizeJoinCode(r.PathValue("joinCode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.findRoomByCode(code)
	if err != nil {
		if errors.Is(err, errRoomNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var records []db.Event
	if err := s.db.Where("room_id = ?", room.ID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"id":        record.ID,
			"type":      record.Type,
			"roundId":   record.RoundID,
			"playerId":  record.PlayerID,
			"createdAt": record.CreatedAt,
			"payload":   record.Payload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roomId": room.ID,
		"events": events,
	})
}
