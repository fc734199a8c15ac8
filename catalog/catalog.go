// Package catalog provides the defect catalog: categorized programming
// defects with bilingual pedagogical text, difficulty-aware sampling
// and best-effort usage telemetry.
package catalog

import "fmt"

// Locale selects the language for textual fields.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

// Localized is a bilingual text attribute. Resolution prefers the
// requested locale, falls back to English, and finally to whatever
// stable code the caller supplies.
type Localized struct {
	EN string `json:"en,omitempty"`
	ZH string `json:"zh,omitempty"`
}

// Pick returns the text for the locale, falling back to English.
// Returns "" when both are empty; use PickOr to substitute a code.
func (l Localized) Pick(locale Locale) string {
	if locale == LocaleZH && l.ZH != "" {
		return l.ZH
	}
	if l.EN != "" {
		return l.EN
	}
	if locale != LocaleZH {
		return l.ZH
	}
	return ""
}

// PickOr resolves like Pick but substitutes fallback (typically the
// record's stable code) when no locale has text.
func (l Localized) PickOr(locale Locale, fallback string) string {
	if text := l.Pick(locale); text != "" {
		return text
	}
	return fallback
}

// Difficulty grades a defect for the learner.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string; empty maps to medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("invalid difficulty %q", s)
}

// Category is the stored, bilingual form of a defect grouping.
// The code is unique and immutable; soft deletion via Active.
type Category struct {
	Code      string    `json:"code"`
	Name      Localized `json:"name"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
}

// Defect is the stored, bilingual form of one pedagogical defect.
type Defect struct {
	Code         string     `json:"code"`
	CategoryCode string     `json:"category_code"`
	Name         Localized  `json:"name"`
	Description  Localized  `json:"description"`
	Guide        Localized  `json:"implementation_guide"`
	Difficulty   Difficulty `json:"difficulty"`
	UsageCount   int64      `json:"usage_count"`
}

// CategoryInfo is a category resolved for one locale.
type CategoryInfo struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// DefectInfo is a defect resolved for one locale. This is what prompt
// assembly and the artifact manifest consume.
type DefectInfo struct {
	Code         string     `json:"code"`
	CategoryCode string     `json:"category_code"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Guide        string     `json:"implementation_guide"`
	Difficulty   Difficulty `json:"difficulty"`
}

// resolveCategory projects a stored category for one locale.
func resolveCategory(c Category, locale Locale) CategoryInfo {
	return CategoryInfo{
		Code:      c.Code,
		Name:      c.Name.PickOr(locale, c.Code),
		SortOrder: c.SortOrder,
	}
}

// resolveDefect projects a stored defect for one locale.
func resolveDefect(d Defect, locale Locale) DefectInfo {
	return DefectInfo{
		Code:         d.Code,
		CategoryCode: d.CategoryCode,
		Name:         d.Name.PickOr(locale, d.Code),
		Description:  d.Description.Pick(locale),
		Guide:        d.Guide.Pick(locale),
		Difficulty:   d.Difficulty,
	}
}

// Selection describes the defects chosen for one generation: either an
// explicit defect list or a (categories, count, difficulty) draw.
type Selection struct {
	CategoryCodes []string   `json:"category_codes,omitempty"`
	Count         int        `json:"count,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	DefectCodes   []string   `json:"defect_codes,omitempty"`
}

// Explicit reports whether the selection names defects directly.
func (s Selection) Explicit() bool {
	return len(s.DefectCodes) > 0
}

// Validate enforces the selection invariants: an explicit list or a
// category draw with count in [1, 10], never both empty.
func (s Selection) Validate() error {
	if s.Explicit() {
		return nil
	}
	if s.Count < 1 || s.Count > 10 {
		return fmt.Errorf("selection count must be in [1, 10], got %d", s.Count)
	}
	if s.Difficulty != "" {
		if _, err := ParseDifficulty(string(s.Difficulty)); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedCount is the number of defects the selection will produce:
// the explicit list length, or the requested count (before difficulty
// adjustment).
func (s Selection) ResolvedCount() int {
	if s.Explicit() {
		return len(s.DefectCodes)
	}
	return s.Count
}
