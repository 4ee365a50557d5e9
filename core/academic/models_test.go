package academic

import "testing"

func TestSchoolYear_Validate(t *testing.T) {
	tests := []struct {
		name    string
		year    SchoolYear
		wantErr bool
	}{
		{"valid", "2024-2025", false},
		{"non-consecutive", "2024-2026", true},
		{"reversed", "2025-2024", true},
		{"single year", "2024", true},
		{"short years", "24-25", true},
		{"not numeric", "abcd-efgh", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.year.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchoolYear_PrevNext(t *testing.T) {
	sy := SchoolYear("2024-2025")
	if got := sy.Prev(); got != "2023-2024" {
		t.Errorf("Prev() = %s, want 2023-2024", got)
	}
	if got := sy.Next(); got != "2025-2026" {
		t.Errorf("Next() = %s, want 2025-2026", got)
	}
	if got := sy.Start(); got != 2024 {
		t.Errorf("Start() = %d, want 2024", got)
	}
}
