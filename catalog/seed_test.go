package catalog

import "testing"

const seedEN = `{
  "Logical": [
    {"name": "Off-by-one loop bound", "description": "Loop runs one step too far.", "implementation_guide": "Use <= where < is correct.", "difficulty": "easy"},
    {"name": "Integer division truncation", "description": "Fraction silently discarded.", "implementation_guide": "Divide two ints into a double."}
  ],
  "Java Specific": [
    {"name": "String comparison with ==", "description": "Reference equality instead of equals.", "implementation_guide": "Compare strings with ==.", "difficulty": "hard"}
  ]
}`

const seedZH = `{
  "邏輯錯誤": [
    {"name": "迴圈邊界差一", "description": "迴圈多跑一步。", "implementation_guide": "在應該用 < 的地方用 <=。"},
    {"name": "整數除法截斷", "description": "小數部分被捨棄。", "implementation_guide": "用兩個整數相除後存入 double。"}
  ],
  "Java 特定錯誤": [
    {"name": "用 == 比較字串", "description": "比較的是參考而非內容。", "implementation_guide": "用 == 比較字串。"}
  ]
}`

func TestLoadSeed(t *testing.T) {
	categories, defects, err := LoadSeed([]byte(seedEN), []byte(seedZH))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(categories))
	}
	if categories[0].Code != "logical" || categories[1].Code != "java_specific" {
		t.Errorf("category order = %s, %s", categories[0].Code, categories[1].Code)
	}
	if categories[0].Name.ZH != "邏輯錯誤" {
		t.Errorf("zh category name = %q", categories[0].Name.ZH)
	}

	if len(defects) != 3 {
		t.Fatalf("got %d defects, want 3", len(defects))
	}

	first := defects[0]
	if first.Code != "logical_off_by_one_loop_bound" {
		t.Errorf("defect code = %q", first.Code)
	}
	if first.Difficulty != DifficultyEasy {
		t.Errorf("difficulty = %q, want easy", first.Difficulty)
	}
	if first.Name.ZH != "迴圈邊界差一" {
		t.Errorf("zh name = %q", first.Name.ZH)
	}

	// Missing difficulty defaults to medium.
	if defects[1].Difficulty != DifficultyMedium {
		t.Errorf("default difficulty = %q, want medium", defects[1].Difficulty)
	}
}

func TestLoadSeedEnglishOnly(t *testing.T) {
	_, defects, err := LoadSeed([]byte(seedEN), nil)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if defects[0].Name.ZH != "" {
		t.Errorf("expected empty zh name, got %q", defects[0].Name.ZH)
	}
}

func TestLoadSeedInvalid(t *testing.T) {
	if _, _, err := LoadSeed([]byte("not json"), nil); err == nil {
		t.Error("expected error for invalid english seed")
	}
	if _, _, err := LoadSeed([]byte(seedEN), []byte("not json")); err == nil {
		t.Error("expected error for invalid chinese seed")
	}
	bad := `{"Logical": [{"name": "x", "difficulty": "impossible"}]}`
	if _, _, err := LoadSeed([]byte(bad), nil); err == nil {
		t.Error("expected error for invalid difficulty")
	}
}

func TestCodeDerivation(t *testing.T) {
	cases := []struct {
		category, name, want string
	}{
		{"Code Quality", "Magic Numbers", "code_quality_magic_numbers"},
		{"Logical", "Off-by-one loop bound", "logical_off_by_one_loop_bound"},
		{"Java Specific", "String comparison with ==", "java_specific_string_comparison_with"},
	}
	for _, c := range cases {
		got := DefectCode(CategoryCode(c.category), c.name)
		if got != c.want {
			t.Errorf("DefectCode(%q, %q) = %q, want %q", c.category, c.name, got, c.want)
		}
	}
}

func TestLocalizedPick(t *testing.T) {
	full := Localized{EN: "Logical", ZH: "邏輯錯誤"}
	if full.Pick(LocaleZH) != "邏輯錯誤" {
		t.Error("zh should pick zh")
	}
	if full.Pick(LocaleEN) != "Logical" {
		t.Error("en should pick en")
	}

	enOnly := Localized{EN: "Logical"}
	if enOnly.Pick(LocaleZH) != "Logical" {
		t.Error("zh should fall back to en")
	}

	empty := Localized{}
	if empty.PickOr(LocaleZH, "logical") != "logical" {
		t.Error("empty should fall back to the code")
	}
}
