package relevance

import "testing"

func newTestFilter(t *testing.T) *Filter {
	t.Helper()
	return New(DefaultConfig())
}

func TestIsAccessory(t *testing.T) {
	f := newTestFilter(t)

	tests := []struct {
		name string
		want bool
	}{
		{"iPhone 15 保護殼 透明", true},
		{"iPhone 15 Case Clear", true},
		{"Type-C 充電線 2m", true},
		{"tempered glass for iPhone 15", true},
		{"iPhone 15 128GB 藍色", false},
		{"PS5 Slim 主機", false},
	}
	for _, tt := range tests {
		if got := f.IsAccessory(tt.name); got != tt.want {
			t.Errorf("IsAccessory(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHasBrandConflict(t *testing.T) {
	f := newTestFilter(t)

	tests := []struct {
		candidate string
		target    string
		want      bool
	}{
		{"Samsung Galaxy S24", "iphone 15", true},
		{"Xbox Series X", "ps5", true},
		{"Sony WH-1000XM5", "airpods pro", true},
		{"iPhone 15 Pro", "iphone 15", false},
		{"Dell XPS 13", "macbook air", true},
		// Target without a registered family never conflicts.
		{"Samsung Galaxy S24", "galaxy s24", false},
	}
	for _, tt := range tests {
		if got := f.HasBrandConflict(tt.candidate, tt.target); got != tt.want {
			t.Errorf("HasBrandConflict(%q, %q) = %v, want %v", tt.candidate, tt.target, got, tt.want)
		}
	}
}

// Accessory listings are rejected outright when accessories are disallowed,
// even when the title contains the full target name.
func TestIsRelevant_AccessoryHardReject(t *testing.T) {
	f := newTestFilter(t)

	candidates := []string{
		"iPhone 15 保護殼",
		"iPhone 15 螢幕保護貼 9H",
		"iphone 15 case with strap",
		"充電器 for iPhone 15",
	}
	for _, c := range candidates {
		if f.IsRelevant(c, "iphone 15", 0.65, false) {
			t.Errorf("IsRelevant(%q) = true, want false (accessory disallowed)", c)
		}
	}

	// The same listing passes once accessories are allowed and similarity is high.
	if !f.IsRelevant("iPhone 15 保護殼", "iphone 15 保護殼", 0.65, true) {
		t.Error("accessory should be relevant when explicitly allowed")
	}
}

func TestScore_SubstringBase(t *testing.T) {
	f := newTestFilter(t)

	got := f.Score("Apple iPhone 15 128GB 藍色", "iphone 15")
	if got < 0.8 {
		t.Errorf("Score = %v, want >= 0.8 for substring containment", got)
	}
}

func TestScore_BrandConflictPenalty(t *testing.T) {
	f := newTestFilter(t)

	// Compare the same candidate against conflicting and non-conflicting
	// targets of identical textual shape to isolate the penalty.
	base := f.Score("samsung galaxy flagship phone 256gb", "galaxy flagship phone")
	penalized := f.Score("samsung flagship phone 256gb iphone style", "iphone flagship phone")
	if penalized > base*0.2 {
		t.Errorf("conflicting-brand score %v not sufficiently below clean score %v", penalized, base)
	}

	// Direct property: for a registered family, a conflicting candidate
	// scores at most BrandConflictPenalty of the maximum.
	s := f.Score("Samsung Galaxy S24 旗艦手機", "iphone 15")
	if s > f.Config().BrandConflictPenalty {
		t.Errorf("Score = %v, want <= %v after brand-conflict penalty", s, f.Config().BrandConflictPenalty)
	}
}

func TestScore_TokenOverlapBoost(t *testing.T) {
	f := newTestFilter(t)

	// All target tokens present but scattered: overlap boost should keep the
	// score near 0.7 even though the strings differ substantially.
	got := f.Score("2023 new model razer viper v3 pro wireless", "viper v3 pro")
	if got < 0.65 {
		t.Errorf("Score = %v, want >= 0.65 via token-overlap boost", got)
	}
}

func TestMatchRatio(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"iphone 15", "iphone 15", 1.0, 1.0},
		{"", "", 0, 0},
		{"abc", "xyz", 0, 0},
		{"iphone 15 pro", "iphone 15", 0.7, 1.0},
	}
	for _, tt := range tests {
		got := matchRatio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("matchRatio(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := normalize("iPhone-15!! (128GB)")
	want := "iphone 15 128gb"
	if got != want {
		t.Errorf("normalize = %q, want %q", got, want)
	}
}
