package server

import (
	"net/http"
	"testing"

	"ai-pictionary/internal/db"
)

func TestSubmitOnlyDuringGeneratingPhase(t *testing.T) {
	_, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	startRound(t, ts, code, hostID)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "a moose on a unicycle",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d during PROMPT, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	advanceRoom(t, ts, code, hostID)
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "a moose on a unicycle",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d during GENERATING, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if _, ok := body["submissionId"].(string); !ok {
		t.Fatalf("expected submissionId, got %v", body)
	}
}

func TestResubmitOverwrites(t *testing.T) {
	srv, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	startRound(t, ts, code, hostID)
	advanceRoom(t, ts, code, hostID)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "a moose on a unicycle",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	first := decodeBody(t, resp)["submissionId"].(string)

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "a penguin in a top hat",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	second := decodeBody(t, resp)["submissionId"].(string)
	if first != second {
		t.Fatalf("expected the original row to be kept, got %s then %s", first, second)
	}

	var count int64
	if err := srv.db.Model(&db.Submission{}).Count(&count).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one submission per player per round, got %d", count)
	}
	var stored db.Submission
	if err := srv.db.Where("id = ?", first).First(&stored).Error; err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if stored.PromptInput != "a penguin in a top hat" {
		t.Fatalf("expected the latest text to win, got %q", stored.PromptInput)
	}
}

func TestSubmitEmptyInputRejected(t *testing.T) {
	_, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	startRound(t, ts, code, hostID)
	advanceRoom(t, ts, code, hostID)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSubmitBeforeRoundStarts(t *testing.T) {
	_, ts := newTestServer(t)

	code, hostID := createRoom(t, ts, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/submit", map[string]any{
		"joinCode":    code,
		"playerId":    hostID,
		"promptInput": "a moose on a unicycle",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}
