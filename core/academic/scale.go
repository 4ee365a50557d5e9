package academic

// Scale describes a level's grading scale: its bounds, the direction in
// which grades improve, and the passing bound. K-12 levels grade on 0-100
// where higher is better; college grades on 1.0-5.0 where lower is better
// and 5.0 denotes failure.
//
// All comparison direction decisions live here; the grade aggregator, the
// qualification evaluator and the ranking reporter must consult the same
// Scale rather than comparing raw values.
type Scale struct {
	Min           float64
	Max           float64
	Pass          float64
	LowerIsBetter bool
}

var scales = map[string]Scale{
	LevelElementary: {Min: 0, Max: 100, Pass: 75},
	LevelJuniorHigh: {Min: 0, Max: 100, Pass: 75},
	LevelSeniorHigh: {Min: 0, Max: 100, Pass: 75},
	LevelCollege:    {Min: 1.0, Max: 5.0, Pass: 5.0, LowerIsBetter: true},
}

// ScaleFor returns the grading scale for a level key.
func ScaleFor(levelKey string) (Scale, bool) {
	s, ok := scales[levelKey]
	return s, ok
}

// Contains reports whether grade falls inside the scale bounds.
func (s Scale) Contains(grade float64) bool {
	return grade >= s.Min && grade <= s.Max
}

// Passing reports whether grade is a passing grade on this scale.
// On the college scale the failure value itself (5.0) does not pass.
func (s Scale) Passing(grade float64) bool {
	if s.LowerIsBetter {
		return grade < s.Pass
	}
	return grade >= s.Pass
}

// MeetsMin reports whether value satisfies a "minimum GPA" bound.
// On an inverted scale the bound acts as a ceiling: value must be <= bound.
func (s Scale) MeetsMin(value, bound float64) bool {
	if s.LowerIsBetter {
		return value <= bound
	}
	return value >= bound
}

// WithinMax reports whether value satisfies a "maximum GPA" bound.
// On an inverted scale the bound acts as a floor: value must be >= bound.
func (s Scale) WithinMax(value, bound float64) bool {
	if s.LowerIsBetter {
		return value >= bound
	}
	return value <= bound
}

// Better reports whether a is a strictly better grade than b on this scale.
func (s Scale) Better(a, b float64) bool {
	if s.LowerIsBetter {
		return a < b
	}
	return a > b
}

// Worst returns the worse of the two grades on this scale.
func (s Scale) Worst(a, b float64) float64 {
	if s.Better(a, b) {
		return b
	}
	return a
}
