package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"ai-pictionary/internal/db"

	"github.com/gorilla/websocket"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	group := h.groups[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code, err := normalizeJoinCode(r.PathValue("joinCode"))
	if err != nil {
		http.NotFound(w, r)
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
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room_id=%s remote=%s", room.ID, r.RemoteAddr)
	s.ws.Add(room.ID, conn)
	if snapshot, err := s.roomSnapshot(room); err == nil {
		s.ws.Send(conn, snapshot)
	}
	go s.readWS(room.ID, conn)
}

func (s *Server) readWS(roomID string, conn *websocket.Conn) {
	defer s.ws.Remove(roomID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected room_id=%s error=%v", roomID, err)
			return
		}
	}
}

// broadcastRoomUpdate pushes a fresh snapshot to every connection watching
// the room after any mutation.
func (s *Server) broadcastRoomUpdate(roomID string) {
	if s.ws == nil {
		return
	}
	var room db.Room
	if err := s.db.Where("id = ?", roomID).First(&room).Error; err != nil {
		return
	}
	snapshot, err := s.roomSnapshot(&room)
	if err != nil {
		return
	}
	s.ws.Broadcast(roomID, snapshot)
}
