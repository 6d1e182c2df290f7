// Package gateway exposes the conversation engine over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scribekit/scribe/internal/agent"
	"github.com/scribekit/scribe/internal/events"
	"github.com/scribekit/scribe/internal/gateway/ws"
	"github.com/scribekit/scribe/internal/ledger"
	"github.com/scribekit/scribe/internal/skills"
)

// Server is the Scribe gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	engine     *agent.Engine
	registry   *skills.Registry
	host       string
	port       int
}

// NewServer creates a gateway server over the given engine and registry.
func NewServer(engine *agent.Engine, registry *skills.Registry, bus *events.Bus, host string, port int) *Server {
	hub := ws.NewHub(bus)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		hub:      hub,
		bus:      bus,
		engine:   engine,
		registry: registry,
		host:     host,
		port:     port,
	}

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/events/ws", hub.ServeWS)
	r.Get("/api/skills", s.handleSkills)

	r.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleHistory)
		r.Delete("/{id}", s.handleDelete)
		r.Post("/{id}/messages", s.handleSubmit)
	})

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("Scribe gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID             string             `json:"id"`
		ConversationID string             `json:"conversation_id,omitempty"`
		Type           string             `json:"type"`
		Timestamp      string             `json:"timestamp"`
		Source         events.EventSource `json:"source"`
		Payload        map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:             e.ID,
			ConversationID: e.ConversationID,
			Type:           string(e.Type),
			Timestamp:      e.Timestamp.Format(time.RFC3339Nano),
			Source:         e.Source,
			Payload:        e.Payload,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	type skillJSON struct {
		Name        string                      `json:"name"`
		Description string                      `json:"description"`
		Parameters  map[string]skills.ParamSpec `json:"parameters,omitempty"`
	}

	descriptors := s.registry.List()
	result := struct {
		Skills   []skillJSON      `json:"skills"`
		Warnings []skills.Warning `json:"warnings,omitempty"`
	}{
		Skills:   make([]skillJSON, len(descriptors)),
		Warnings: s.registry.Warnings(),
	}
	for i, d := range descriptors {
		result.Skills[i] = skillJSON{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListConversations()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.engine.StartConversation()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	turns, err := s.engine.History(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"turns": turns,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.engine.DeleteConversation(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	turn, err := s.engine.Submit(r.Context(), id, body.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrCorrupt):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
