package server

import (
	"net/http"
	"strings"
	"testing"

	"ai-pictionary/internal/db"
)

func TestCreateRoom(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{
		"name": "Ada",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["isHost"] != true {
		t.Fatalf("expected isHost true, got %v", body["isHost"])
	}
	code, ok := body["joinCode"].(string)
	if !ok || len(code) != joinCodeLength {
		t.Fatalf("expected a %d-character join code, got %v", joinCodeLength, body["joinCode"])
	}
	if _, ok := body["playerId"].(string); !ok {
		t.Fatalf("expected playerId string, got %v", body["playerId"])
	}
}

func TestCreateRoomRequiresName(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{
		"name": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCreateRoomJoinCodeCollisionRetries(t *testing.T) {
	srv, ts := newTestServer(t)

	srv.joinCodes = func() string { return "SAMECD" }
	createRoom(t, ts, "Ada")

	// Second room keeps colliding; the handler retries 5 codes then fails.
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{
		"name": "Grace",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}

	// A fresh code on a later attempt succeeds.
	codes := []string{"SAMECD", "SAMECD", "FRESHC"}
	srv.joinCodes = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{
		"name": "Grace",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["joinCode"] != "FRESHC" {
		t.Fatalf("expected retried join code FRESHC, got %v", body["joinCode"])
	}
}

func TestJoinRoomByCode(t *testing.T) {
	_, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Grace",
		"joinCode": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["isHost"] != false {
		t.Fatalf("expected isHost false, got %v", body["isHost"])
	}
}

func TestJoinRoomLowercaseCode(t *testing.T) {
	_, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Grace",
		"joinCode": "  " + strings.ToLower(code) + " ",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestJoinRoomNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Grace",
		"joinCode": "ZZZZZZ",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestJoinRoomDuplicateName(t *testing.T) {
	_, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Ada",
		"joinCode": code,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// The same name is fine in a different room.
	otherCode, _ := createRoom(t, ts, "Grace")
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Ada",
		"joinCode": otherCode,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestJoinRoomFull(t *testing.T) {
	_, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/settings", map[string]any{
		"joinCode":   code,
		"playerId":   hostID,
		"maxPlayers": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	joinRoom(t, ts, code, "Grace")

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Alan",
		"joinCode": code,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestJoinRoomIgnoresInactivePlayersForCapacity(t *testing.T) {
	srv, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/settings", map[string]any{
		"joinCode":   code,
		"playerId":   hostID,
		"maxPlayers": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	guestID := joinRoom(t, ts, code, "Grace")

	// Only active players count toward the cap, so a seat opens up when
	// someone goes inactive.
	if err := srv.db.Model(&db.Player{}).Where("id = ?", guestID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate player: %v", err)
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Alan",
		"joinCode": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestJoinEndedRoom(t *testing.T) {
	srv, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	if err := srv.db.Model(&db.Room{}).Where("join_code = ?", code).
		Update("status", db.RoomStatusEnded).Error; err != nil {
		t.Fatalf("mark room ended: %v", err)
	}

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]string{
		"name":     "Grace",
		"joinCode": code,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSettingsNonHostForbidden(t *testing.T) {
	_, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	guestID := joinRoom(t, ts, code, "Grace")

	family := false
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/settings", map[string]any{
		"joinCode":         code,
		"playerId":         guestID,
		"isFamilyFriendly": family,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestSettingsOnlyInLobby(t *testing.T) {
	srv, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	if err := srv.db.Model(&db.Room{}).Where("join_code = ?", code).
		Update("status", db.RoomStatusInGame).Error; err != nil {
		t.Fatalf("mark room in game: %v", err)
	}

	family := false
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/settings", map[string]any{
		"joinCode":         code,
		"playerId":         hostID,
		"isFamilyFriendly": family,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSettingsUpdatesRoom(t *testing.T) {
	srv, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	family := false
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/settings", map[string]any{
		"joinCode":         code,
		"playerId":         hostID,
		"isFamilyFriendly": family,
		"totalRounds":      5,
		"roundSeconds":     30,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var room db.Room
	if err := srv.db.Where("join_code = ?", code).First(&room).Error; err != nil {
		t.Fatalf("load room: %v", err)
	}
	if room.IsFamilyFriendly || room.TotalRounds != 5 || room.RoundSeconds != 30 {
		t.Fatalf("settings not applied: %+v", room)
	}
}

func TestGetRoomSnapshot(t *testing.T) {
	_, ts := newTestServer(t)

	code, _ := createRoom(t, ts, "Ada")
	joinRoom(t, ts, code, "Grace")

	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+code, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	players, ok := body["players"].([]any)
	if !ok || len(players) != 2 {
		t.Fatalf("expected 2 players in snapshot, got %v", body["players"])
	}
	if body["status"] != db.RoomStatusLobby {
		t.Fatalf("expected LOBBY status, got %v", body["status"])
	}
	if body["round"] != nil {
		t.Fatalf("expected no round before start, got %v", body["round"])
	}
}
