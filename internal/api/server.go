// Package api is the subscription proxy daemon's HTTP surface: the
// billing-gated interpret endpoint and the subscription status query.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dreamlens/internal/journal"
	"dreamlens/internal/provider"
	"dreamlens/internal/subscription"
)

// Server handles the proxy daemon's HTTP API.
type Server struct {
	router      chi.Router
	subscribers subscription.SubscriberStore
	secret      []byte
	logger      *zap.Logger

	// newClient builds the backend adapter for a subscriber's credential.
	// Swapped in tests.
	newClient func(apiKey string) provider.Client
}

// NewServer wires the routes.
func NewServer(subscribers subscription.SubscriberStore, secret []byte, logger *zap.Logger) *Server {
	s := &Server{
		subscribers: subscribers,
		secret:      secret,
		logger:      logger,
		newClient: func(apiKey string) provider.Client {
			return provider.NewOpenAIClient(apiKey)
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/interpret", s.handleInterpret)
		r.Get("/subscription/status", s.handleStatus)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// authenticate resolves the bearer token to session claims, or writes the
// 401 itself and returns nil.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) *subscription.SessionClaims {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if auth == "" || token == auth {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return nil
	}
	claims, err := subscription.VerifySessionToken(s.secret, token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
		return nil
	}
	return claims
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	claims := s.authenticate(w, r)
	if claims == nil {
		return
	}
	sub, err := s.subscribers.Get(r.Context(), claims.Email)
	if err != nil {
		s.logger.Error("subscriber lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Subscriber store unavailable")
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"email":  claims.Email,
			"status": subscription.StatusInactive,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email":            sub.Email,
		"status":           sub.Status,
		"currentPeriodEnd": sub.CurrentPeriodEnd,
	})
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	claims := s.authenticate(w, r)
	if claims == nil {
		return
	}

	sub, err := s.subscribers.Get(r.Context(), claims.Email)
	if err != nil {
		s.logger.Error("subscriber lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Subscriber store unavailable")
		return
	}
	if !sub.Active() {
		writeError(w, http.StatusForbidden, "Active subscription required")
		return
	}
	if sub.BackendAPIKey == "" {
		writeError(w, http.StatusInternalServerError, "API key not configured. Please contact support.")
		return
	}

	var payload provider.ProxyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &provider.Request{
		Lens:                payload.Lens,
		Model:               journal.SubscriberModel,
		EntryTitle:          payload.EntryTitle,
		EntryBody:           payload.EntryBody,
		Tags:                payload.Tags,
		PersonalSymbols:     payload.PersonalSymbols,
		ConversationHistory: payload.ConversationHistory,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	s.logger.Info("interpret stream started",
		zap.String("email", claims.Email),
		zap.String("lens", string(payload.Lens)),
		zap.Bool("follow_up", len(payload.ConversationHistory) > 0))

	client := s.newClient(sub.BackendAPIKey)
	stream := client.InterpretStream(r.Context(), req)

	writeFrame := func(frame provider.ProxyFrame) {
		data, err := json.Marshal(frame)
		if err != nil {
			return
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(data)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}

	for frag := range stream.Fragments {
		writeFrame(provider.ProxyFrame{Content: frag})
	}
	res := <-stream.Result
	if res.Err != nil {
		s.logger.Warn("interpret stream failed", zap.Error(res.Err), zap.Duration("elapsed", time.Since(start)))
		writeFrame(provider.ProxyFrame{Error: "Stream error"})
		return
	}

	s.logger.Info("interpret stream completed", zap.Duration("elapsed", time.Since(start)))
	writeFrame(provider.ProxyFrame{Done: true, Model: journal.SubscriberModel})
}
