package editor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on operator-typed agent votes.
var (
	DefaultMaxInputSize = 4096
	EnvMaxInputSize     = "AGORA_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("agent votes exceed the maximum size")
	ErrInvalidUTF8   = errors.New("agent votes are not valid UTF-8")
	ErrEmptyInput    = errors.New("agent votes are empty")
	ErrNotObject     = errors.New("agent votes must be a {agent: vote} object")
)

// Sanitize prepares operator-typed agent votes for parsing. Oversized text
// is rejected, not truncated. Terminal control characters are dropped while
// line breaks and tabs are kept, and what remains must be a braced object.
func Sanitize(input string) (string, error) {
	if limit := maxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	text := strings.TrimSpace(strings.Map(dropControl, input))
	switch {
	case text == "":
		return "", ErrEmptyInput
	case !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}"):
		return "", fmt.Errorf("%w: got %.20q", ErrNotObject, text)
	}
	return text, nil
}

func dropControl(r rune) rune {
	switch r {
	case '\n', '\t', '\r':
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func maxInputSize() int {
	if v := os.Getenv(EnvMaxInputSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxInputSize
}
