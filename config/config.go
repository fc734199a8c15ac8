// Package config loads engine configuration: the role-to-model
// mapping, retry limits, locale and storage locations.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/flow/store"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/model/anthropic"
	"github.com/reviewkata/reviewkata-go/model/google"
	"github.com/reviewkata/reviewkata-go/model/openai"
	"github.com/reviewkata/reviewkata-go/workflow"
)

// Models maps the three session roles to vendor settings.
type Models struct {
	Generative model.Config `yaml:"generative"`
	Review     model.Config `yaml:"review"`
	Summary    model.Config `yaml:"summary"`
}

// Catalog locates the defect catalog data.
type Catalog struct {
	// SeedEN and SeedZH are paths to the locale seed documents.
	SeedEN string `yaml:"seed_en"`
	SeedZH string `yaml:"seed_zh"`

	// SQLitePath, when set, persists the catalog; empty keeps it in
	// memory.
	SQLitePath string `yaml:"sqlite_path"`
}

// Store selects the session-state backend.
type Store struct {
	// Driver is "memory", "sqlite" or "mysql".
	Driver string `yaml:"driver"`

	// DSN is the sqlite file path or the mysql connection string.
	DSN string `yaml:"dsn"`
}

// Config is the full engine configuration.
type Config struct {
	Locale  catalog.Locale  `yaml:"locale"`
	Limits  workflow.Limits `yaml:"limits"`
	Models  Models          `yaml:"models"`
	Catalog Catalog         `yaml:"catalog"`
	Store   Store           `yaml:"store"`
}

// Default returns a runnable configuration: English locale, default
// limits, OpenAI for every role and in-memory storage.
func Default() Config {
	return Config{
		Locale: catalog.LocaleEN,
		Limits: workflow.Limits{
			MaxEvaluationAttempts: workflow.DefaultMaxEvaluationAttempts,
			MaxIterations:         workflow.DefaultMaxIterations,
		},
		Models: Models{
			Generative: model.Config{Provider: "openai", Model: "gpt-4o", Temperature: 0.8},
			Review:     model.Config{Provider: "openai", Model: "gpt-4o-mini", Temperature: 0.2},
			Summary:    model.Config{Provider: "openai", Model: "gpt-4o-mini", Temperature: 0.5},
		},
		Store: Store{Driver: "memory"},
	}
}

// Load reads a YAML file over the defaults, so a partial file only
// overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// API key environment variables per provider.
const (
	envOpenAI    = "OPENAI_API_KEY"
	envAnthropic = "ANTHROPIC_API_KEY"
	envGoogle    = "GOOGLE_API_KEY"
)

// NewClient constructs a vendor client for one role configuration.
// Keys come from the provider's environment variable; construction
// never dials the vendor.
func NewClient(cfg model.Config) (model.Client, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(os.Getenv(envOpenAI), cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	case "anthropic":
		return anthropic.New(os.Getenv(envAnthropic), cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	case "google":
		return google.New(os.Getenv(envGoogle), cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	}
	return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
}

// BuildModelSet constructs the three role clients.
func BuildModelSet(m Models) (model.Set, error) {
	generative, err := NewClient(m.Generative)
	if err != nil {
		return model.Set{}, fmt.Errorf("generative role: %w", err)
	}
	reviewClient, err := NewClient(m.Review)
	if err != nil {
		return model.Set{}, fmt.Errorf("review role: %w", err)
	}
	summary, err := NewClient(m.Summary)
	if err != nil {
		return model.Set{}, fmt.Errorf("summary role: %w", err)
	}
	return model.Set{Generative: generative, Review: reviewClient, Summary: summary}, nil
}

// BuildCatalog loads the seed documents into the configured backend.
func BuildCatalog(c Catalog) (catalog.Store, error) {
	enJSON, err := os.ReadFile(c.SeedEN)
	if err != nil {
		return nil, fmt.Errorf("read english seed: %w", err)
	}
	var zhJSON []byte
	if c.SeedZH != "" {
		zhJSON, err = os.ReadFile(c.SeedZH)
		if err != nil {
			return nil, fmt.Errorf("read chinese seed: %w", err)
		}
	}

	categories, defects, err := catalog.LoadSeed(enJSON, zhJSON)
	if err != nil {
		return nil, err
	}

	if c.SQLitePath == "" {
		return catalog.NewMemoryStore(categories, defects), nil
	}

	cs, err := catalog.NewSQLiteStore(c.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := cs.Ingest(context.Background(), categories, defects); err != nil {
		_ = cs.Close()
		return nil, err
	}
	return cs, nil
}

// BuildStateStore constructs the session-state backend.
func BuildStateStore(s Store) (store.Store[workflow.State], error) {
	switch s.Driver {
	case "", "memory":
		return store.NewMemStore[workflow.State](), nil
	case "sqlite":
		return store.NewSQLiteStore[workflow.State](s.DSN)
	case "mysql":
		return store.NewMySQLStore[workflow.State](s.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", s.Driver)
}
