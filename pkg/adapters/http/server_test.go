package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/agora/internal/dto"
	"github.com/aretw0/agora/pkg/adapters/memory"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/editor"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 0, "a", "a", "b")))
	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 1, "a", "b", "c")))
	require.NoError(t, store.Append(ctx, ports.ContractRecord("Y", 0, "c", "c", "c")))

	ed, err := editor.Open(ctx, store)
	require.NoError(t, err)
	return NewHandler(ed, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("agora_debates_total 3\n"))
	}))), store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agora-http")
}

func TestListTopics(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/topics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var topics []dto.Topic
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &topics))
	assert.Equal(t, []dto.Topic{
		{Topic: "X", Debates: []int{1, 2}},
		{Topic: "Y", Debates: []int{1}},
	}, topics)
}

func TestListDebates(t *testing.T) {
	h, _ := newTestHandler(t)

	var all []dto.Debate
	w := do(t, h, "GET", "/debates", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	var filtered []dto.Debate
	w = do(t, h, "GET", "/debates?topic=Y", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Tie between: c", filtered[0].Winner)
}

func TestGetDebate(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/debates/2?topic=X", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d dto.Debate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "Tie between: a, b, c", d.Winner)
	assert.Equal(t, []string{"a", "b", "c"}, d.Votes.Keys())

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/debates/9?topic=X", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/debates/2", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/debates/zero?topic=X", "").Code)
}

func TestSetAgentVotes(t *testing.T) {
	h, store := newTestHandler(t)

	w := do(t, h, "PUT", "/debates/1?topic=X", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(t, h, "PUT", "/debates/1/agent-votes?topic=X", `{"agent_votes": "{'Player 1': 'c'}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec, err := store.Get(context.Background(), domain.Key{Topic: "X", Number: 1})
	require.NoError(t, err)
	vote, ok := rec.AgentVotes.Get("Player 1")
	assert.True(t, ok)
	assert.Equal(t, "c", vote)
	assert.Equal(t, 1, rec.AgentVotes.Len())

	w = do(t, h, "PUT", "/debates/1/agent-votes?topic=X", `{"agent_votes": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PUT", "/debates/1/agent-votes?topic=X", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, blank := range []string{`""`, `"   "`, `"null"`, `"{}"`} {
		w = do(t, h, "PUT", "/debates/1/agent-votes?topic=X", `{"agent_votes": `+blank+`}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, blank)
	}
	rec, err = store.Get(context.Background(), domain.Key{Topic: "X", Number: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.AgentVotes.Len(), "blank text keeps the previous votes")

	w = do(t, h, "PUT", "/debates/7/agent-votes?topic=X", `{"agent_votes": "{}"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReload(t *testing.T) {
	h, store := newTestHandler(t)
	require.NoError(t, store.Append(context.Background(), ports.ContractRecord("Z", 0, "a")))

	w := do(t, h, "POST", "/reload", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":4}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agora_debates_total")
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?topic=X", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	w := do(t, h, "PUT", "/debates/2/agent-votes?topic=X", `{"agent_votes": "{\"Player 2\": \"b\"}"}`)
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: debate")
	assert.Contains(t, output, `"agent_votes":{"Player 2":"b"}`)
}

func TestStreamManager_CatchAll(t *testing.T) {
	sm := NewStreamManager(slogDiscard())
	all, cancelAll := sm.Subscribe("")
	defer cancelAll()
	x, cancelX := sm.Subscribe("X")
	defer cancelX()

	sm.Broadcast("Y", "y")
	sm.Broadcast("X", "x")

	assert.Equal(t, "y", <-all)
	assert.Equal(t, "x", <-all)
	assert.Equal(t, "x", <-x)
	assert.Empty(t, x)
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
