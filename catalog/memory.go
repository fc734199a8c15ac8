package catalog

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory catalog. It is the default backend for
// tests and single-process deployments; SQLiteStore persists the same
// schema.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []Category
	defects    map[string]*Defect
	byCategory map[string][]string

	rng  *rand.Rand
	rmu  sync.Mutex
	sink UsageSink
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithRand fixes the sampling source, making draws deterministic.
func WithRand(rng *rand.Rand) MemoryOption {
	return func(s *MemoryStore) { s.rng = rng }
}

// WithSink attaches a telemetry sink.
func WithSink(sink UsageSink) MemoryOption {
	return func(s *MemoryStore) { s.sink = sink }
}

// NewMemoryStore builds a store over the given catalog records.
func NewMemoryStore(categories []Category, defects []Defect, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		defects:    make(map[string]*Defect, len(defects)),
		byCategory: make(map[string][]string),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sink:       NullSink{},
	}
	s.categories = append(s.categories, categories...)
	sort.SliceStable(s.categories, func(a, b int) bool {
		return s.categories[a].SortOrder < s.categories[b].SortOrder
	})
	for i := range defects {
		d := defects[i]
		s.defects[d.Code] = &d
		s.byCategory[d.CategoryCode] = append(s.byCategory[d.CategoryCode], d.Code)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListCategories implements Store.
func (s *MemoryStore) ListCategories(_ context.Context, locale Locale) ([]CategoryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []CategoryInfo
	for _, c := range s.categories {
		if c.Active {
			out = append(out, resolveCategory(c, locale))
		}
	}
	return out, nil
}

// ListDefects implements Store.
func (s *MemoryStore) ListDefects(_ context.Context, categoryCode string, locale Locale) ([]DefectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes, ok := s.byCategory[categoryCode]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]DefectInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, resolveDefect(*s.defects[code], locale))
	}
	return out, nil
}

// GetDefect implements Store.
func (s *MemoryStore) GetDefect(_ context.Context, code string, locale Locale) (DefectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.defects[code]
	if !ok {
		return DefectInfo{}, ErrNotFound
	}
	return resolveDefect(*d, locale), nil
}

// SampleDefects implements Store.
func (s *MemoryStore) SampleDefects(ctx context.Context, sel Selection, locale Locale) ([]DefectInfo, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	categories, byCategory, err := s.selectionPools(sel, locale)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	s.rmu.Lock()
	picked := sampleDefects(categories, byCategory, sel, s.rng)
	s.rmu.Unlock()

	for _, d := range picked {
		s.RecordUsage(ctx, UsageRecord{DefectCode: d.Code, Action: ActionPracticed})
	}
	return picked, nil
}

// selectionPools resolves the selection's categories and their active
// defects. Caller holds the read lock.
func (s *MemoryStore) selectionPools(sel Selection, locale Locale) ([]CategoryInfo, map[string][]DefectInfo, error) {
	wanted := make(map[string]bool, len(sel.CategoryCodes))
	for _, code := range sel.CategoryCodes {
		wanted[code] = true
	}

	var categories []CategoryInfo
	byCategory := make(map[string][]DefectInfo)
	for _, c := range s.categories {
		if !c.Active {
			continue
		}
		if len(wanted) > 0 && !wanted[c.Code] {
			continue
		}
		categories = append(categories, resolveCategory(c, locale))
		for _, code := range s.byCategory[c.Code] {
			byCategory[c.Code] = append(byCategory[c.Code], resolveDefect(*s.defects[code], locale))
		}
	}
	if len(categories) == 0 {
		return nil, nil, ErrNotFound
	}
	return categories, byCategory, nil
}

// RecordUsage implements Store. Delivery never blocks and failures are
// not surfaced.
func (s *MemoryStore) RecordUsage(_ context.Context, rec UsageRecord) {
	s.mu.Lock()
	if d, ok := s.defects[rec.DefectCode]; ok {
		d.UsageCount++
	}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Record(rec)
	}
}

// UsageCount reports how often a defect has been recorded, for
// inspection and tests.
func (s *MemoryStore) UsageCount(code string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.defects[code]; ok {
		return d.UsageCount
	}
	return 0
}
