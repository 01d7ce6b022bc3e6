package tasks

import "testing"

func TestCatalogPolicy(t *testing.T) {
	tests := []struct {
		category string
		daily    bool
		target   int
		want     int
	}{
		{"Učenje", false, 1, 60},
		{"  POSAO ", false, 1, 70},
		{"Programming", false, 1, 65},
		{"household", false, 1, 30},
		{"", false, 1, 40},
		{"nepoznato", false, 1, 40},
		{"Učenje", true, 3, 42},
		{"čitanje", true, 1, 35},
		{"fitness", true, 2, 38},
		{"gym", true, 1, 31},
		{"work", true, 5, 49},
		{"projekt", true, 1, 45},
		{"", true, 1, 28},
		{"cooking", true, 1, 24},
		{"dom", true, 1, 21},
	}
	for _, tt := range tests {
		got := CatalogPolicy.Reward(tt.category, tt.daily, tt.target)
		if got != tt.want {
			t.Errorf("CatalogPolicy.Reward(%q, %v, %d) = %d, want %d", tt.category, tt.daily, tt.target, got, tt.want)
		}
	}
}

func TestEditorPolicy(t *testing.T) {
	tests := []struct {
		category string
		daily    bool
		target   int
		want     int
	}{
		{"učenje", false, 1, 50},
		{"Health", false, 1, 40},
		{"posao", false, 1, 60},
		{"Osobni razvoj", false, 1, 45},
		{"hobbies", false, 1, 30},
		{"Kućanski poslovi", false, 1, 25},
		{"Programiranje", false, 1, 35},
		{"learning", true, 3, 120},
		{"fitness", true, 1, 32},
		{"bilo što", true, 2, 56},
		{"work", true, 5, 240},
		{"personal development", true, 3, 108},
		{"household", true, 4, 80},
		{"work", true, 0, 48},
	}
	for _, tt := range tests {
		got := EditorPolicy.Reward(tt.category, tt.daily, tt.target)
		if got != tt.want {
			t.Errorf("EditorPolicy.Reward(%q, %v, %d) = %d, want %d", tt.category, tt.daily, tt.target, got, tt.want)
		}
	}
}

func TestPolicyByName(t *testing.T) {
	if p, ok := PolicyByName("catalog"); !ok || p.Name != "catalog" {
		t.Fatalf("catalog = %v, %v", p.Name, ok)
	}
	if p, ok := PolicyByName("editor"); !ok || p.Name != "editor" {
		t.Fatalf("editor = %v, %v", p.Name, ok)
	}
	if _, ok := PolicyByName("other"); ok {
		t.Fatal("unknown policy accepted")
	}
}

func TestNormalizeCategory(t *testing.T) {
	// "Uc" + комбинируемый гачек совпадает с готовым "č"
	decomposed := "Uc\u030cenje"
	if got := NormalizeCategory(decomposed); got != "učenje" {
		t.Fatalf("NormalizeCategory(decomposed) = %q", got)
	}
	if got := NormalizeCategory("  ČIŠĆENJE "); got != "čišćenje" {
		t.Fatalf("NormalizeCategory = %q", got)
	}
}
