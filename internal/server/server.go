package server

import (
	"net/http"

	"ai-pictionary/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	db      *gorm.DB
	cfg     config.Config
	ws      *wsHub
	limiter *rateLimiter

	// overridable in tests
	joinCodes func() string
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		db:        conn,
		cfg:       cfg,
		ws:        newWSHub(),
		limiter:   newRateLimiter(),
		joinCodes: newJoinCode,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("POST /api/rooms/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/settings", s.handleSettings)
	mux.HandleFunc("POST /api/rooms/ready", s.handleReady)
	mux.HandleFunc("POST /api/rooms/start", s.handleStartRound)
	mux.HandleFunc("POST /api/rooms/reroll", s.handleReroll)
	mux.HandleFunc("POST /api/rooms/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/rooms/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/rooms/rematch", s.handleRematch)
	mux.HandleFunc("GET /api/rooms/{joinCode}", s.handleGetRoom)
	mux.HandleFunc("GET /api/rooms/{joinCode}/events", s.handleEvents)
	mux.HandleFunc("GET /ws/rooms/{joinCode}", s.handleWebsocket)
	return mux
}
