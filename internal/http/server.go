// Package http exposes the transaction store over REST with JSON
// payloads and bearer-token authentication.
package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fincas/internal/auth"
	"fincas/internal/events"
	"fincas/internal/log"
	"fincas/internal/store"
)

type contextKey string

const userIDKey contextKey = "user_id"

type Server struct {
	store     store.Store
	issuer    *auth.TokenIssuer
	publisher *events.Publisher
	logger    *log.Logger
}

func NewServer(st store.Store, issuer *auth.TokenIssuer, publisher *events.Publisher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Server{
		store:     st,
		issuer:    issuer,
		publisher: publisher,
		logger:    logger.WithComponent("http"),
	}
}

// Router builds the service routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(log.RequestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me", s.handleMe)
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Get("/categories", s.handleListCategories)
	})

	return r
}

// requireAuth resolves the bearer token to a user id or rejects with 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.issuer.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (s *Server) publishEvent(ctx context.Context, op events.Op, transactionID string) {
	if err := s.publisher.Publish(ctx, op, transactionID, userID(ctx)); err != nil {
		// Events are best-effort; the mutation already succeeded.
		s.logger.WarnContext(ctx, "publish transaction event failed",
			"op", string(op), "transaction_id", transactionID, "error", err)
	}
}
