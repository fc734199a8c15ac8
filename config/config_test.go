package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Locale != catalog.LocaleEN {
		t.Errorf("locale = %q", cfg.Locale)
	}
	if cfg.Limits.MaxEvaluationAttempts != 3 || cfg.Limits.MaxIterations != 3 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.Models.Generative.Provider != "openai" || cfg.Models.Generative.Model == "" {
		t.Errorf("generative = %+v", cfg.Models.Generative)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
locale: zh
limits:
  max_iterations: 5
models:
  review:
    provider: anthropic
    model: claude-sonnet-4-0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Locale != catalog.LocaleZH {
		t.Errorf("locale = %q, want zh", cfg.Locale)
	}
	if cfg.Limits.MaxIterations != 5 {
		t.Errorf("max_iterations = %d, want 5", cfg.Limits.MaxIterations)
	}
	if cfg.Limits.MaxEvaluationAttempts != 3 {
		t.Errorf("max_evaluation_attempts = %d, default must survive", cfg.Limits.MaxEvaluationAttempts)
	}
	if cfg.Models.Review.Provider != "anthropic" {
		t.Errorf("review provider = %q", cfg.Models.Review.Provider)
	}
	if cfg.Models.Generative.Provider != "openai" {
		t.Errorf("generative provider = %q, default must survive", cfg.Models.Generative.Provider)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("locale: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestNewClient(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "google"} {
		c, err := NewClient(model.Config{Provider: provider, Model: "m"})
		if err != nil || c == nil {
			t.Errorf("%s: client = %v, err = %v", provider, c, err)
		}
	}

	if _, err := NewClient(model.Config{Provider: "cohere"}); err == nil || !strings.Contains(err.Error(), "cohere") {
		t.Errorf("unknown provider err = %v", err)
	}
}

func TestBuildCatalog(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed_en.json")
	en := `{"Logical": [{"name": "Off-by-one", "description": "d", "implementation_guide": "g"}]}`
	if err := os.WriteFile(seed, []byte(en), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("memory backend", func(t *testing.T) {
		cs, err := BuildCatalog(Catalog{SeedEN: seed})
		if err != nil {
			t.Fatal(err)
		}
		categories, err := cs.ListCategories(context.Background(), catalog.LocaleEN)
		if err != nil || len(categories) != 1 {
			t.Fatalf("categories = %v, err = %v", categories, err)
		}
	})

	t.Run("sqlite backend", func(t *testing.T) {
		cs, err := BuildCatalog(Catalog{SeedEN: seed, SQLitePath: filepath.Join(dir, "catalog.db")})
		if err != nil {
			t.Fatal(err)
		}
		defects, err := cs.ListDefects(context.Background(), "logical", catalog.LocaleEN)
		if err != nil || len(defects) != 1 {
			t.Fatalf("defects = %v, err = %v", defects, err)
		}
	})

	t.Run("missing seed", func(t *testing.T) {
		if _, err := BuildCatalog(Catalog{SeedEN: filepath.Join(dir, "absent.json")}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestBuildStateStore(t *testing.T) {
	for _, driver := range []string{"", "memory"} {
		if st, err := BuildStateStore(Store{Driver: driver}); err != nil || st == nil {
			t.Errorf("driver %q: %v", driver, err)
		}
	}

	st, err := BuildStateStore(Store{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "state.db")})
	if err != nil || st == nil {
		t.Fatalf("sqlite: %v", err)
	}

	if _, err := BuildStateStore(Store{Driver: "redis"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
