package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"matchday/backend/internal/cache"
	"matchday/backend/internal/config"
	"matchday/backend/internal/dispatcher"
	"matchday/backend/internal/metrics"
	"matchday/backend/internal/models"
	"matchday/backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CommandDispatcher dispatches one sport/intent command.
// Satisfied by *dispatcher.Dispatcher; narrowed for handler tests.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, q dispatcher.Query) (*models.Response, error)
}

// Server is the HTTP command surface: one explicit request/response route
// per command the chat relay forwards
type Server struct {
	cfg        *config.Config
	dispatcher CommandDispatcher
	db         *repository.Database
	cache      *cache.RedisCache
}

// NewServer creates the HTTP server
func NewServer(cfg *config.Config, d CommandDispatcher, db *repository.Database, c *cache.RedisCache) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		db:         db,
		cache:      c,
	}
}

// Router builds the chi router with all routes and middleware
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-ID"},
	}))
	r.Use(recordMetrics)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/{sport}/fixtures", s.handleFixtures)
		r.Get("/{sport}/standings", s.handleStandings)
		r.Get("/{sport}/rankings", s.handleRankings)

		r.Post("/predictions", s.handleRecordPrediction)
		r.Get("/users/{telegramID}/accuracy", s.handleAccuracy)
		r.Get("/users/{telegramID}/predictions", s.handleUserPredictions)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/invite", s.handleAdminInvite)
			r.Post("/promote", s.handleAdminPromote)
			r.Get("/stats", s.handleAdminStats)
		})
	})

	return r
}

// requestID tags every request with a UUID for log correlation
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

type ctxKey int

const requestIDKey ctxKey = 0

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request's correlation ID, if set
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// recordMetrics records per-route request counts and latency
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}

// requireAdmin gates admin routes on the X-Admin-ID header.
// The caller is an admin if configured as one or flagged in the users table.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := strconv.ParseInt(r.Header.Get("X-Admin-ID"), 10, 64)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "X-Admin-ID header required")
			return
		}

		if !s.isAdmin(r.Context(), adminID) {
			log.Warn().Int64("telegram_id", adminID).Msg("Rejected non-admin access to admin route")
			respondError(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAdmin(ctx context.Context, telegramID int64) bool {
	if s.cfg.IsAdmin(telegramID) {
		return true
	}
	if s.db == nil {
		return false
	}
	user, err := s.db.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return false
	}
	return user.IsAdmin
}

// allowed reports whether a user may record predictions under invite-only mode
func (s *Server) allowed(user *models.User) bool {
	if !s.cfg.InviteOnly {
		return true
	}
	return user.IsInvited || user.IsAdmin || s.cfg.IsAdmin(user.TelegramID)
}
