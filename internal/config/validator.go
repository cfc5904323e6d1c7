package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "retry.max_retries")
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidProviders returns the supported chat providers.
func ValidProviders() []string {
	return []string{"openai", "gemini", "scripted"}
}

// ValidFormats returns the supported transcript formats.
func ValidFormats() []string {
	return []string{"csv", "text", "redis"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !slices.Contains(ValidProviders(), c.Provider) {
		errs = append(errs, ValidationError{"provider", c.Provider, "must be one of " + strings.Join(ValidProviders(), ", ")})
	}
	if c.Rounds < 0 {
		errs = append(errs, ValidationError{"rounds", c.Rounds, "must not be negative"})
	}
	errs = append(errs, c.validateStores()...)
	errs = append(errs, c.validateSeats()...)
	errs = append(errs, c.validateRetry()...)

	for i, p := range c.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, ValidationError{fmt.Sprintf("redact[%d]", i), p, "is not a valid regular expression"})
		}
	}
	if c.Log.Level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{"log.level", c.Log.Level, "must be one of debug, info, warn, error"})
	}
	return errs
}

func (c *Config) validateStores() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidFormats(), c.Format) {
		errs = append(errs, ValidationError{"format", c.Format, "must be one of " + strings.Join(ValidFormats(), ", ")})
	}
	if c.Format != "redis" && c.TranscriptFile == "" {
		errs = append(errs, ValidationError{"transcript_file", c.TranscriptFile, "is required for file formats"})
	}
	for i, m := range c.Mirror {
		field := fmt.Sprintf("mirror[%d]", i)
		switch {
		case !slices.Contains(ValidFormats(), m):
			errs = append(errs, ValidationError{field, m, "must be one of " + strings.Join(ValidFormats(), ", ")})
		case m == c.Format:
			errs = append(errs, ValidationError{field, m, "duplicates the primary format"})
		}
	}
	if (c.Format == "redis" || slices.Contains(c.Mirror, "redis")) && c.Redis.Addr == "" {
		errs = append(errs, ValidationError{"redis.addr", c.Redis.Addr, "is required for the redis format"})
	}
	return errs
}

func (c *Config) validateSeats() []ValidationError {
	if len(c.Seats) != domain.Seats {
		return []ValidationError{{"seats", len(c.Seats), fmt.Sprintf("must list exactly %d seats", domain.Seats)}}
	}
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, s := range c.Seats {
		if s.Name == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("seats[%d].name", i), s.Name, "is required"})
		} else if seen[s.Name] {
			errs = append(errs, ValidationError{fmt.Sprintf("seats[%d].name", i), s.Name, "must be unique"})
		}
		seen[s.Name] = true
		if s.Model == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("seats[%d].model", i), s.Model, "is required"})
		}
	}
	return errs
}

func (c *Config) validateRetry() []ValidationError {
	var errs []ValidationError
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, ValidationError{"retry.max_retries", c.Retry.MaxRetries, "must not be negative"})
	}
	switch {
	case c.Retry.Base < 1:
		errs = append(errs, ValidationError{"retry.base", c.Retry.Base, "must be at least 1"})
	case c.Retry.Base == 1 && !c.Retry.Jitter:
		errs = append(errs, ValidationError{"retry.base", c.Retry.Base, "must be greater than 1 unless retry.jitter is on"})
	}
	if c.Retry.InitialDelay < 0 {
		errs = append(errs, ValidationError{"retry.initial_delay", c.Retry.InitialDelay, "must not be negative"})
	}
	return errs
}

// CheckCredentials reports a missing API key for the selected provider.
// It is separate from Validate because only commands that hold debates need one.
func (c *Config) CheckCredentials() error {
	switch {
	case c.Provider == "openai" && c.OpenAI.APIKey == "":
		return ValidationErrors{{"openai.api_key", "", "is required (set OPENAI_API_KEY)"}}
	case c.Provider == "gemini" && c.Gemini.APIKey == "":
		return ValidationErrors{{"gemini.api_key", "", "is required (set GEMINI_API_KEY)"}}
	}
	return nil
}
