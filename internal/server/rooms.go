package server

import (
	"errors"
	"log"
	"net/http"

	"ai-pictionary/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

const joinCodeMaxAttempts = 5

type createRoomRequest struct {
	Name string `json:"name"`
}

type joinRoomRequest struct {
	Name     string `json:"name"`
	JoinCode string `json:"joinCode"`
}

type settingsRequest struct {
	JoinCode         string `json:"joinCode"`
	PlayerID         string `json:"playerId"`
	IsFamilyFriendly *bool  `json:"isFamilyFriendly"`
	TotalRounds      *int   `json:"totalRounds"`
	RoundSeconds     *int   `json:"roundSeconds"`
	MaxPlayers       *int   `json:"maxPlayers"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create") {
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var room *db.Room
	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		candidate := &db.Room{
			ID:               uuid.NewString(),
			JoinCode:         s.joinCodes(),
			Status:           db.RoomStatusLobby,
			MaxPlayers:       s.cfg.MaxPlayers,
			IsFamilyFriendly: true,
			TotalRounds:      s.cfg.TotalRounds,
			RoundSeconds:     s.cfg.RoundSeconds,
		}
		createErr := s.db.Create(candidate).Error
		if createErr == nil {
			room = candidate
			break
		}
		if isUniqueViolation(createErr) {
			continue
		}
		writeError(w, http.StatusInternalServerError, createErr.Error())
		return
	}
	if room == nil {
		writeError(w, http.StatusInternalServerError, "failed to allocate a join code")
		return
	}

	host := db.Player{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		DisplayName: name,
		IsHost:      true,
		IsActive:    true,
	}
	if err := s.db.Create(&host).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistEvent(room, "room_created", EventPayload{JoinCode: room.JoinCode, PlayerName: name})
	log.Printf("room created room_id=%s join_code=%s host=%s", room.ID, room.JoinCode, name)

	writeJSON(w, http.StatusCreated, map[string]any{
		"roomId":   room.ID,
		"joinCode": room.JoinCode,
		"playerId": host.ID,
		"isHost":   true,
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "join") {
		return
	}
	var req joinRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name and joinCode are required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := normalizeJoinCode(req.JoinCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := s.findRoomByCode(code)
	if err != nil {
		if errors.Is(err, errRoomNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if room.Status == db.RoomStatusEnded {
		writeError(w, http.StatusBadRequest, "game has ended")
		return
	}
	players, err := s.activePlayers(room.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if room.MaxPlayers > 0 && len(players) >= room.MaxPlayers {
		writeError(w, http.StatusBadRequest, "room is full")
		return
	}
	for _, existing := range players {
		if existing.DisplayName == name {
			writeError(w, http.StatusBadRequest, "name already taken")
			return
		}
	}

	player := db.Player{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		DisplayName: name,
		IsActive:    true,
	}
	if err := s.db.Create(&player).Error; err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "name already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistEvent(room, "player_joined", EventPayload{PlayerID: player.ID, PlayerName: name})
	log.Printf("player joined room_id=%s player_id=%s name=%s", room.ID, player.ID, name)

	writeJSON(w, http.StatusOK, map[string]any{
		"roomId":   room.ID,
		"joinCode": room.JoinCode,
		"playerId": player.ID,
		"isHost":   false,
	})
	s.broadcastRoomUpdate(room.ID)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "joinCode and playerId are required")
		return
	}
	room, player, ok := s.resolveCaller(w, req.JoinCode, req.PlayerID)
	if !ok {
		return
	}
	if !player.IsHost {
		writeError(w, http.StatusForbidden, "only the host can update settings")
		return
	}
	if room.Status != db.RoomStatusLobby {
		writeError(w, http.StatusBadRequest, "settings can only change in the lobby")
		return
	}

	updates := map[string]any{}
	if req.IsFamilyFriendly != nil {
		updates["is_family_friendly"] = *req.IsFamilyFriendly
	}
	if req.TotalRounds != nil {
		if *req.TotalRounds < 1 || *req.TotalRounds > maxRoundsPerRoom {
			writeError(w, http.StatusBadRequest, "invalid totalRounds")
			return
		}
		updates["total_rounds"] = *req.TotalRounds
	}
	if req.RoundSeconds != nil {
		if *req.RoundSeconds < 5 || *req.RoundSeconds > maxRoundSeconds {
			writeError(w, http.StatusBadRequest, "invalid roundSeconds")
			return
		}
		updates["round_seconds"] = *req.RoundSeconds
	}
	if req.MaxPlayers != nil {
		if *req.MaxPlayers < 2 || *req.MaxPlayers > maxRoomPlayers {
			writeError(w, http.StatusBadRequest, "invalid maxPlayers")
			return
		}
		players, err := s.activePlayers(room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if *req.MaxPlayers < len(players) {
			writeError(w, http.StatusBadRequest, "maxPlayers is below current player count")
			return
		}
		updates["max_players"] = *req.MaxPlayers
	}
	if len(updates) > 0 {
		// Guarded so a concurrent auto-start cannot be overwritten.
		if err := s.db.Model(&db.Room{}).
			Where("id = ? AND status = ?", room.ID, db.RoomStatusLobby).
			Updates(updates).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.persistEvent(room, "settings_updated", EventPayload{PlayerID: player.ID})
		log.Printf("settings updated room_id=%s player_id=%s", room.ID, player.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	s.broadcastRoomUpdate(room.ID)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
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
	snapshot, err := s.roomSnapshot(room)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// resolveCaller looks up the room by join code and the caller within it,
// writing the error response itself on failure.
func (s *Server) resolveCaller(w http.ResponseWriter, joinCode, playerID string) (*db.Room, *db.Player, bool) {
	code, err := normalizeJoinCode(joinCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	room, err := s.findRoomByCode(code)
	if err != nil {
		if errors.Is(err, errRoomNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return nil, nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	player, err := s.findPlayer(room.ID, playerID)
	if err != nil {
		if errors.Is(err, errPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return nil, nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return room, player, true
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
