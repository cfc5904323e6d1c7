package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/agora/pkg/adapters/gemini"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestRequest(t *testing.T) {
	contents, cfg := gemini.Request([]ports.Message{
		{Role: ports.RoleSystem, Content: "You are Player 1."},
		{Role: ports.RoleUser, Content: "Player 2: hello"},
		{Role: ports.RoleUser, Content: "Please vote"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "Player 2: hello", contents[0].Parts[0].Text)
	assert.Equal(t, genai.RoleUser, contents[1].Role)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "You are Player 1.", cfg.SystemInstruction.Parts[0].Text)
}

func TestRequest_NoSystem(t *testing.T) {
	_, cfg := gemini.Request([]ports.Message{{Role: ports.RoleUser, Content: "hi"}})
	assert.Nil(t, cfg.SystemInstruction)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, domain.ErrTransient},
		{"wrapped rate limit", fmt.Errorf("call: %w", genai.APIError{Code: 429}), domain.ErrTransient},
		{"bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, domain.ErrUnrecoverable},
		{"transport", errors.New("dial tcp: connection refused"), domain.ErrUnrecoverable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, gemini.Classify(tt.err), tt.want)
		})
	}

	assert.Equal(t, context.DeadlineExceeded, gemini.Classify(context.DeadlineExceeded))
}
