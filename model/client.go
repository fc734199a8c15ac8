// Package model defines the completion capability the trainer depends
// on, plus role tagging for the three model slots a session uses.
package model

import (
	"context"
	"fmt"
)

// Client is the single capability the core needs from an LLM vendor:
// turn a prompt into text.
//
// Contract:
//   - Invoke blocks; calls may take seconds to tens of seconds.
//   - Retries are the caller's responsibility, never the client's;
//     an Invoke is not assumed idempotent.
//   - Construction is cheap and never dials the vendor. The first
//     failing Invoke surfaces connectivity problems.
//   - Implementations must tolerate concurrent Invoke calls from
//     distinct workflow instances.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Client interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Invoke implements Client.
func (f Func) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Role tags a client with the purpose it serves inside a session.
// Roles may map to the same vendor endpoint but are configured
// independently (model name, temperature).
type Role string

const (
	// RoleGenerative produces and regenerates defect-seeded code.
	RoleGenerative Role = "generative"

	// RoleReview verifies artifacts and grades learner reviews.
	RoleReview Role = "review"

	// RoleSummary produces the final comparison report.
	RoleSummary Role = "summary"
)

// Config describes one role's model settings.
type Config struct {
	// Provider selects the vendor: "openai", "anthropic" or "google".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the vendor model identifier.
	Model string `json:"model" yaml:"model"`

	// Temperature is passed through to the vendor. Zero means the
	// vendor default.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length. Zero means a provider-
	// specific default.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// Set holds the three role-tagged clients a session requires.
type Set struct {
	Generative Client
	Review     Client
	Summary    Client
}

// Validate reports an error naming the first missing role.
func (s Set) Validate() error {
	if s.Generative == nil {
		return fmt.Errorf("model set: missing %s client", RoleGenerative)
	}
	if s.Review == nil {
		return fmt.Errorf("model set: missing %s client", RoleReview)
	}
	if s.Summary == nil {
		return fmt.Errorf("model set: missing %s client", RoleSummary)
	}
	return nil
}

// ForRole returns the client serving the given role, or nil for an
// unknown role.
func (s Set) ForRole(role Role) Client {
	switch role {
	case RoleGenerative:
		return s.Generative
	case RoleReview:
		return s.Review
	case RoleSummary:
		return s.Summary
	}
	return nil
}
