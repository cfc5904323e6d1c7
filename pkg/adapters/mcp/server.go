// Package mcp exposes the transcript editor as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/agora"
	"github.com/aretw0/agora/internal/dto"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TranscriptURI is the resource exposing the whole transcript.
const TranscriptURI = "agora://transcript"

// Editor defines the transcript operations required by the MCP server.
type Editor interface {
	Records() []*domain.DebateRecord
	Topics() []string
	Numbers(topic string) []int
	Record(key domain.Key) (*domain.DebateRecord, error)
	SetAgentVotes(key domain.Key, text string) (*domain.DebateRecord, error)
	Save(ctx context.Context) error
	Reload(ctx context.Context) error
}

// TopicsResponse lists the topics of the transcript.
type TopicsResponse struct {
	Topics []dto.Topic `json:"topics" jsonschema_description:"Topics with their debate numbers"`
}

// DebatesResponse lists debate records.
type DebatesResponse struct {
	Debates []dto.Debate `json:"debates" jsonschema_description:"Debate records in transcript order"`
}

// Server wraps the Editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
	mu        sync.Mutex
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		editor:    editor,
		logger:    logger,
		mcpServer: server.NewMCPServer("agora-mcp", strings.TrimSpace(agora.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List the debated topics and the debate numbers recorded for each."),
		mcp.WithOutputSchema[TopicsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListTopics))

	s.mcpServer.AddTool(mcp.NewTool("list_debates",
		mcp.WithDescription("List debate records, optionally restricted to one topic."),
		mcp.WithString("topic", mcp.Description("Topic to filter on (optional)")),
		mcp.WithOutputSchema[DebatesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListDebates))

	s.mcpServer.AddTool(mcp.NewTool("get_debate",
		mcp.WithDescription("Get one debate record: stances, conversation, votes, agent votes and winner."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Debate topic")),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Debate number within the topic, starting at 1")),
		mcp.WithOutputSchema[dto.Debate](),
	), mcp.NewStructuredToolHandler(s.handleGetDebate))

	s.mcpServer.AddTool(mcp.NewTool("set_agent_votes",
		mcp.WithDescription("Overwrite the agent votes of a debate and save the transcript."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Debate topic")),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Debate number within the topic, starting at 1")),
		mcp.WithString("agent_votes", mcp.Required(), mcp.Description(`JSON object of agent name to vote, e.g. {"Player 1": "democracy"}`)),
		mcp.WithOutputSchema[dto.Debate](),
	), mcp.NewStructuredToolHandler(s.handleSetAgentVotes))
}

func (s *Server) handleListTopics(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TopicsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := s.editor.Topics()
	resp := TopicsResponse{Topics: make([]dto.Topic, len(topics))}
	for i, t := range topics {
		resp.Topics[i] = dto.Topic{Topic: t, Debates: s.editor.Numbers(t)}
	}
	return resp, nil
}

func (s *Server) handleListDebates(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DebatesResponse, error) {
	topic, _ := args["topic"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.DebateRecord
	for _, r := range s.editor.Records() {
		if topic == "" || r.Topic == topic {
			records = append(records, r)
		}
	}
	return DebatesResponse{Debates: dto.FromRecords(records)}, nil
}

func (s *Server) handleGetDebate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dto.Debate, error) {
	key, err := parseKey(args)
	if err != nil {
		return dto.Debate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.editor.Record(key)
	if err != nil {
		return dto.Debate{}, err
	}
	return dto.FromRecord(rec), nil
}

func (s *Server) handleSetAgentVotes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dto.Debate, error) {
	key, err := parseKey(args)
	if err != nil {
		return dto.Debate{}, err
	}
	text, _ := args["agent_votes"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.editor.SetAgentVotes(key, text)
	if err != nil {
		s.logger.Warn("MCP set_agent_votes: input rejected", "error", err, "size", len(text))
		return dto.Debate{}, err
	}
	if err := s.editor.Save(ctx); err != nil {
		if reloadErr := s.editor.Reload(ctx); reloadErr != nil {
			s.logger.Error("MCP set_agent_votes: reload after failure", "error", reloadErr)
		}
		return dto.Debate{}, err
	}
	return dto.FromRecord(rec), nil
}

func parseKey(args map[string]interface{}) (domain.Key, error) {
	topic, _ := args["topic"].(string)
	if topic == "" {
		return domain.Key{}, errors.New("topic is required")
	}

	var number int
	switch n := args["number"].(type) {
	case float64:
		number = int(n)
	case int:
		number = n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return domain.Key{}, fmt.Errorf("invalid debate number: %w", err)
		}
		number = int(i)
	}
	if number < 1 {
		return domain.Key{}, errors.New("debate number must be a positive integer")
	}
	return domain.Key{Topic: topic, Number: number}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TranscriptURI, "Debate Transcript",
		mcp.WithMIMEType("application/json"),
	), s.readTranscript)
}

func (s *Server) readTranscript(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	debates := dto.FromRecords(s.editor.Records())
	s.mu.Unlock()

	jsonBytes, err := json.Marshal(debates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TranscriptURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
