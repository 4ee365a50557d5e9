package grade

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
)

var (
	ErrNotFound = errors.New("grade not found")

	// ErrNoData is a soft error: the student simply has no grades for the
	// requested scope. Callers must treat it as "not qualified", never as
	// a failure.
	ErrNoData = errors.New("no grade data for student")
)

// editWindow bounds how long a grade entry stays mutable after creation.
const editWindow = 5 * 24 * time.Hour

// StudentGrade is one grade entry. PeriodID is null for cumulative/final
// grades. Once submitted for validation the entry is locked regardless of
// the edit window.
type StudentGrade struct {
	ID          string      `json:"id"`
	StudentID   string      `json:"student_id"`
	SubjectID   string      `json:"subject_id"`
	LevelID     string      `json:"level_id"`
	PeriodID    null.String `json:"period_id,omitempty"`
	SchoolYear  string      `json:"school_year"`
	Grade       float64     `json:"grade"`
	YearOfStudy null.Int    `json:"year_of_study,omitempty"`
	Submitted   bool        `json:"submitted"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// CanEdit reports whether the grade entry is still mutable at the given time.
func (g StudentGrade) CanEdit(now time.Time) bool {
	if g.Submitted {
		return false
	}
	return now.Sub(g.CreatedAt) <= editWindow
}

// NewStudentGrade contains information needed to record a grade entry.
type NewStudentGrade struct {
	StudentID   string      `json:"student_id" validate:"required"`
	SubjectID   string      `json:"subject_id" validate:"required"`
	LevelID     string      `json:"level_id" validate:"required"`
	PeriodID    null.String `json:"period_id"`
	SchoolYear  string      `json:"school_year" validate:"required,schoolyear"`
	Grade       float64     `json:"grade"`
	YearOfStudy null.Int    `json:"year_of_study"`
}

func (ng *NewStudentGrade) Validate(scale academic.Scale) error {
	ng.SchoolYear = core.CleanString(ng.SchoolYear)
	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return validateGradeOnScale(ng.Grade, scale)
}

// UpdateStudentGrade defines what may be modified on an existing grade entry.
type UpdateStudentGrade struct {
	Grade float64 `json:"grade"`
}

func (ug UpdateStudentGrade) Validate(scale academic.Scale) error {
	return validateGradeOnScale(ug.Grade, scale)
}

func validateGradeOnScale(g float64, scale academic.Scale) error {
	if !scale.Contains(g) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "grade",
			Error: "grade is outside the level's valid scale",
		})
	}
	return nil
}

// QueryFilter selects grade entries; zero values are skipped.
type QueryFilter struct {
	StudentID  string
	LevelID    string
	SchoolYear string
	PeriodID   string
	// optional year-of-study bounds on the grade rows themselves
	YearMin null.Int
	YearMax null.Int
}

// PeriodSummary is one grading period's slice of an aggregation.
type PeriodSummary struct {
	PeriodID string  `json:"period_id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// Summary holds the aggregated statistics for one student/level/year scope.
// GPA is the level-appropriate final value: the weighted per-period average
// for levels that weight periods (college), the arithmetic mean otherwise.
type Summary struct {
	Average float64         `json:"average"`
	Minimum float64         `json:"minimum"`
	Maximum float64         `json:"maximum"`
	GPA     float64         `json:"gpa"`
	Count   int             `json:"count"`
	Periods []PeriodSummary `json:"per_period,omitempty"`
}

// Worst returns the worst single grade observed, per the scale's direction.
func (s Summary) Worst(scale academic.Scale) float64 {
	if scale.LowerIsBetter {
		return s.Maximum
	}
	return s.Minimum
}

// weightedFinal computes the weight-adjusted final over the per-period
// averages. Periods without weight are ignored; when no weights exist the
// plain average is returned.
func (s Summary) weightedFinal() float64 {
	var sum, weights float64
	for _, p := range s.Periods {
		if p.Weight > 0 {
			sum += p.Average * p.Weight
			weights += p.Weight
		}
	}
	if weights == 0 {
		return s.Average
	}
	return sum / weights
}
