package academic

import "testing"

func TestScaleFor(t *testing.T) {
	for _, key := range []string{LevelElementary, LevelJuniorHigh, LevelSeniorHigh, LevelCollege} {
		if _, ok := ScaleFor(key); !ok {
			t.Errorf("ScaleFor(%q) not found", key)
		}
	}
	if _, ok := ScaleFor("nursery"); ok {
		t.Error("ScaleFor() returned a scale for an unknown level key")
	}
}

func TestScale_directions(t *testing.T) {
	k12, _ := ScaleFor(LevelElementary)
	college, _ := ScaleFor(LevelCollege)

	tests := []struct {
		name  string
		scale Scale
		check func(s Scale) bool
		want  bool
	}{
		{"k12 contains bound", k12, func(s Scale) bool { return s.Contains(100) }, true},
		{"k12 out of bounds", k12, func(s Scale) bool { return s.Contains(101) }, false},
		{"college out of bounds low", college, func(s Scale) bool { return s.Contains(0.5) }, false},

		{"k12 passing at bound", k12, func(s Scale) bool { return s.Passing(75) }, true},
		{"k12 failing below bound", k12, func(s Scale) bool { return s.Passing(74.9) }, false},
		{"college 5.0 is failure", college, func(s Scale) bool { return s.Passing(5.0) }, false},
		{"college 3.0 passes", college, func(s Scale) bool { return s.Passing(3.0) }, true},

		{"k12 meets min at bound", k12, func(s Scale) bool { return s.MeetsMin(90, 90) }, true},
		{"k12 misses min", k12, func(s Scale) bool { return s.MeetsMin(89.9, 90) }, false},
		{"college min is a ceiling", college, func(s Scale) bool { return s.MeetsMin(1.5, 1.75) }, true},
		{"college min ceiling exceeded", college, func(s Scale) bool { return s.MeetsMin(2.0, 1.75) }, false},

		{"k12 within max", k12, func(s Scale) bool { return s.WithinMax(95, 98) }, true},
		{"college max is a floor", college, func(s Scale) bool { return s.WithinMax(1.0, 1.2) }, false},

		{"k12 higher is better", k12, func(s Scale) bool { return s.Better(95, 90) }, true},
		{"college lower is better", college, func(s Scale) bool { return s.Better(1.25, 1.75) }, true},
		{"equal is not better", k12, func(s Scale) bool { return s.Better(90, 90) }, false},

		{"k12 worst picks lower", k12, func(s Scale) bool { return s.Worst(80, 95) == 80 }, true},
		{"college worst picks higher", college, func(s Scale) bool { return s.Worst(1.25, 2.5) == 2.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.scale); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
