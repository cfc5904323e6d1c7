package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

// RedactedMask replaces every match of a redaction pattern.
const RedactedMask = "***"

type redactMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks every transcript match of the patterns before
// the record reaches the store. Votes are left untouched.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Append(ctx context.Context, record *domain.DebateRecord) error {
	// Clone so the in-memory record handed back to the caller keeps the raw text.
	cloned := *record
	cloned.Transcript = make(domain.Transcript, len(record.Transcript))
	for i, u := range record.Transcript {
		text := string(u)
		for _, re := range m.patterns {
			text = re.ReplaceAllString(text, RedactedMask)
		}
		cloned.Transcript[i] = domain.Utterance(text)
	}
	return m.next.Append(ctx, &cloned)
}
