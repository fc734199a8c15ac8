package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a defect or category code is unknown.
var ErrNotFound = errors.New("catalog: not found")

// UsageAction classifies a telemetry record.
type UsageAction string

const (
	ActionViewed    UsageAction = "viewed"
	ActionPracticed UsageAction = "practiced"
	ActionMastered  UsageAction = "mastered"
	ActionFailed    UsageAction = "failed"
)

// UsageRecord is one fire-and-forget telemetry event.
type UsageRecord struct {
	DefectCode string      `json:"defect_code"`
	Actor      string      `json:"actor,omitempty"`
	Action     UsageAction `json:"action"`
	Context    string      `json:"context,omitempty"`
}

// Store is read access to the catalog plus the telemetry sink.
//
// Reads are locale-aware: textual fields resolve to the requested
// locale, then English, then the stable code. Implementations must be
// safe for concurrent use; the catalog is shared by all workflow
// instances in a process.
type Store interface {
	// ListCategories returns active categories in sort order.
	ListCategories(ctx context.Context, locale Locale) ([]CategoryInfo, error)

	// ListDefects returns active defects in a category.
	ListDefects(ctx context.Context, categoryCode string, locale Locale) ([]DefectInfo, error)

	// GetDefect returns one defect by stable code, or ErrNotFound.
	GetDefect(ctx context.Context, code string, locale Locale) (DefectInfo, error)

	// SampleDefects draws a pseudo-random defect subset for a
	// category-based selection. Explicit selections should be
	// resolved with GetDefect instead.
	SampleDefects(ctx context.Context, sel Selection, locale Locale) ([]DefectInfo, error)

	// RecordUsage appends a telemetry record. Best-effort: it never
	// blocks the caller and never surfaces failures.
	RecordUsage(ctx context.Context, rec UsageRecord)
}
