package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Seed format: two parallel JSON documents, one per locale, each a
// mapping of category display name to defect entries:
//
//	{
//	  "Logical": [
//	    {"name": "Off-by-one loop bound",
//	     "description": "...",
//	     "implementation_guide": "...",
//	     "difficulty": "easy"}
//	  ]
//	}
//
// The difficulty field is optional and defaults to medium. Defects in
// the two documents are matched by position within their category.

// seedDefect is one entry in a seed document.
type seedDefect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Guide       string `json:"implementation_guide"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// SeedDoc is one locale's seed document.
type SeedDoc map[string][]seedDefect

// categoryNameZH is the fixed English→Chinese category name mapping.
var categoryNameZH = map[string]string{
	"Logical":            "邏輯錯誤",
	"Syntax":             "語法錯誤",
	"Code Quality":       "程式碼品質",
	"Standard Violation": "標準違規",
	"Java Specific":      "Java 特定錯誤",
}

// categorySeedOrder fixes sort order for the known categories; unknown
// categories follow alphabetically.
var categorySeedOrder = []string{
	"Logical", "Syntax", "Code Quality", "Standard Violation", "Java Specific",
}

// CategoryCode derives the stable code from the English display name:
// lowercase, spaces become underscores.
func CategoryCode(englishName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(englishName)), " ", "_")
}

// Slug reduces a defect name to lowercase alphanumerics and
// underscores.
func Slug(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// DefectCode derives the stable defect code.
func DefectCode(categoryCode, defectName string) string {
	return categoryCode + "_" + Slug(defectName)
}

// LoadSeed ingests the English and Chinese seed documents and returns
// merged bilingual catalog records. The Chinese document may be nil;
// records then carry English text only.
func LoadSeed(enJSON, zhJSON []byte) ([]Category, []Defect, error) {
	var enDoc SeedDoc
	if err := json.Unmarshal(enJSON, &enDoc); err != nil {
		return nil, nil, fmt.Errorf("catalog: invalid english seed: %w", err)
	}

	var zhDoc SeedDoc
	if len(zhJSON) > 0 {
		if err := json.Unmarshal(zhJSON, &zhDoc); err != nil {
			return nil, nil, fmt.Errorf("catalog: invalid chinese seed: %w", err)
		}
	}

	categories := make([]Category, 0, len(enDoc))
	defects := make([]Defect, 0)

	for order, englishName := range orderedCategoryNames(enDoc) {
		code := CategoryCode(englishName)
		zhName := categoryNameZH[englishName]

		categories = append(categories, Category{
			Code:      code,
			Name:      Localized{EN: englishName, ZH: zhName},
			SortOrder: order,
			Active:    true,
		})

		enDefects := enDoc[englishName]
		var zhDefects []seedDefect
		if zhName != "" {
			zhDefects = zhDoc[zhName]
		}

		for i, en := range enDefects {
			difficulty, err := ParseDifficulty(en.Difficulty)
			if err != nil {
				return nil, nil, fmt.Errorf("catalog: defect %q: %w", en.Name, err)
			}

			d := Defect{
				Code:         DefectCode(code, en.Name),
				CategoryCode: code,
				Name:         Localized{EN: en.Name},
				Description:  Localized{EN: en.Description},
				Guide:        Localized{EN: en.Guide},
				Difficulty:   difficulty,
			}
			if i < len(zhDefects) {
				zh := zhDefects[i]
				d.Name.ZH = zh.Name
				d.Description.ZH = zh.Description
				d.Guide.ZH = zh.Guide
			}
			defects = append(defects, d)
		}
	}
	return categories, defects, nil
}

// orderedCategoryNames returns the document's category names with the
// known categories first in their fixed order, then any others
// alphabetically. JSON objects do not preserve key order, so the order
// must be derived, not read.
func orderedCategoryNames(doc SeedDoc) []string {
	seen := make(map[string]bool, len(doc))
	var names []string

	for _, name := range categorySeedOrder {
		if _, ok := doc[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range doc {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
