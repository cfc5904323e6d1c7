// Package http serves the transcript editor over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/agora"
	"github.com/aretw0/agora/internal/dto"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Editor defines the transcript operations exposed over HTTP.
type Editor interface {
	Records() []*domain.DebateRecord
	Topics() []string
	Numbers(topic string) []int
	Record(key domain.Key) (*domain.DebateRecord, error)
	SetAgentVotes(key domain.Key, text string) (*domain.DebateRecord, error)
	Save(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Server serialises access to an Editor. Every edit is saved immediately.
type Server struct {
	Editor  Editor
	Streams *StreamManager
	Logger  *slog.Logger

	mu sync.Mutex
}

// Option configures the handler.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics http.Handler
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetricsHandler mounts h on /metrics, typically promhttp.Handler().
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	server := &Server{
		Editor:  editor,
		Streams: NewStreamManager(o.logger),
		Logger:  o.logger,
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/topics", server.ListTopics)
	r.Get("/debates", server.ListDebates)
	r.Get("/debates/{number}", server.GetDebate)
	r.Put("/debates/{number}/agent-votes", server.SetAgentVotes)
	r.Post("/reload", server.Reload)
	r.Get("/events", server.SubscribeEvents)
	if o.metrics != nil {
		r.Handle("/metrics", o.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{
		"app":     "agora-http",
		"version": strings.TrimSpace(agora.Version),
	})
}

// ListTopics handles the GET /topics request.
func (s *Server) ListTopics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	topics := s.Editor.Topics()
	resp := make([]dto.Topic, len(topics))
	for i, t := range topics {
		resp[i] = dto.Topic{Topic: t, Debates: s.Editor.Numbers(t)}
	}
	s.mu.Unlock()

	writeJSON(w, s.Logger, resp)
}

// ListDebates handles the GET /debates request, optionally filtered by ?topic=.
func (s *Server) ListDebates(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")

	s.mu.Lock()
	var records []*domain.DebateRecord
	for _, rec := range s.Editor.Records() {
		if topic == "" || rec.Topic == topic {
			records = append(records, rec)
		}
	}
	resp := dto.FromRecords(records)
	s.mu.Unlock()

	writeJSON(w, s.Logger, resp)
}

// GetDebate handles the GET /debates/{number}?topic= request.
func (s *Server) GetDebate(w http.ResponseWriter, r *http.Request) {
	key, ok := s.parseKey(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	rec, err := s.Editor.Record(key)
	var resp dto.Debate
	if err == nil {
		resp = dto.FromRecord(rec)
	}
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, "GetDebate", err)
		return
	}
	writeJSON(w, s.Logger, resp)
}

// SetAgentVotesRequest is the body of PUT /debates/{number}/agent-votes.
type SetAgentVotesRequest struct {
	AgentVotes string `json:"agent_votes"`
}

// SetAgentVotes handles the PUT /debates/{number}/agent-votes?topic= request.
// The edit is saved to the store before the response is written.
func (s *Server) SetAgentVotes(w http.ResponseWriter, r *http.Request) {
	key, ok := s.parseKey(w, r)
	if !ok {
		return
	}

	var body SetAgentVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SetAgentVotes: Invalid request body", "error", err)
		return
	}

	s.mu.Lock()
	rec, err := s.Editor.SetAgentVotes(key, body.AgentVotes)
	if err == nil {
		err = s.Editor.Save(r.Context())
	}
	if err != nil {
		// Keep the in-memory copy aligned with the store.
		if reloadErr := s.Editor.Reload(r.Context()); reloadErr != nil {
			s.Logger.Error("SetAgentVotes: reload after failure", "error", reloadErr)
		}
		s.mu.Unlock()
		s.writeError(w, "SetAgentVotes", err)
		return
	}
	resp := dto.FromRecord(rec)
	s.mu.Unlock()

	if bytes, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(key.Topic, string(bytes))
	}
	writeJSON(w, s.Logger, resp)
}

// Reload handles the POST /reload request, picking up debates appended since the editor was opened.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.Editor.Reload(r.Context())
	count := len(s.Editor.Records())
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, "Reload", err)
		return
	}
	writeJSON(w, s.Logger, map[string]int{"records": count})
}

// SubscribeEvents handles the GET /events request (SSE), streaming edited debates.
// ?topic= restricts the stream to one topic.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	topic := r.URL.Query().Get("topic")
	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: debate\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) parseKey(w http.ResponseWriter, r *http.Request) (domain.Key, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		http.Error(w, "Invalid debate number", http.StatusBadRequest)
		return domain.Key{}, false
	}
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "Missing topic query parameter", http.StatusBadRequest)
		return domain.Key{}, false
	}
	return domain.Key{Topic: topic, Number: number}, true
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrDebateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidAgentVotes):
		http.Error(w, fmt.Sprintf("Invalid agent votes: %v", err), http.StatusBadRequest)
		s.Logger.Warn(op+": input rejected", "error", err)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.Logger.Error(op+" failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
