package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/handler"
	"github.com/dukerupert/lovejourney/internal/media"
	"github.com/dukerupert/lovejourney/internal/middleware"
	ws "github.com/dukerupert/lovejourney/internal/websocket"
)

// Stores is the persistence backend the server runs on.
type Stores struct {
	Users         couple.UserRepository
	Sessions      auth.SessionStore
	Relationships couple.RelationshipRepository
	Questions     couple.QuestionRepository
	Memories      couple.MemoryRepository
}

type Config struct {
	SessionTTL   time.Duration
	CookieSecure bool
	Prompts      couple.Prompter

	// Uploader backs POST /api/memories/images; nil answers 404.
	Uploader media.Uploader

	// ServiceOptions are passed to couple.NewService.
	ServiceOptions []couple.Option
}

type Server struct {
	stores        Stores
	svc           *couple.Service
	hub           *ws.Hub
	authH         *handler.AuthHandler
	relationshipH *handler.RelationshipHandler
	questionH     *handler.QuestionHandler
	memoryH       *handler.MemoryHandler
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(stores Stores, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	svc := couple.NewService(stores.Relationships, stores.Questions, stores.Memories, cfg.Prompts, cfg.ServiceOptions...)

	return &Server{
		stores:        stores,
		svc:           svc,
		hub:           hub,
		authH:         handler.NewAuthHandler(stores.Users, stores.Sessions, cfg.SessionTTL, cfg.CookieSecure, logger.With("component", "auth")),
		relationshipH: handler.NewRelationshipHandler(svc, hub, logger.With("component", "relationship")),
		questionH:     handler.NewQuestionHandler(svc, hub, logger.With("component", "question")),
		memoryH:       handler.NewMemoryHandler(svc, cfg.Uploader, hub, logger.With("component", "memory")),
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() auth.SessionStore {
	return s.stores.Sessions
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.stores.Sessions, s.stores.Users, s.logger.With("component", "auth"))
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimitedHandler allows 10 requests per minute per client IP.
func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/user", s.authH.Me)

	mux.HandleFunc("GET /api/relationship", s.relationshipH.Get)
	mux.HandleFunc("POST /api/relationship", s.relationshipH.Create)
	mux.HandleFunc("POST /api/relationship/link", s.relationshipH.Link)

	mux.HandleFunc("GET /api/questions/{date}", s.questionH.ListForDate)
	mux.HandleFunc("POST /api/questions", s.questionH.Create)
	mux.HandleFunc("PATCH /api/questions/{id}/answer", s.questionH.Answer)

	mux.HandleFunc("GET /api/memories", s.memoryH.List)
	mux.HandleFunc("POST /api/memories", s.memoryH.Create)
	mux.HandleFunc("DELETE /api/memories/{id}", s.memoryH.Delete)
	mux.HandleFunc("POST /api/memories/images", s.memoryH.UploadImage)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.svc, s.logger.With("component", "websocket")))
}
