package honor

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
)

var (
	ErrNotFound          = errors.New("honor result not found")
	ErrTypeNotFound      = errors.New("honor type not found")
	ErrCriterionNotFound = errors.New("honor criterion not found")

	// ErrInvalidTransition signals a disallowed approval-workflow transition;
	// transitions are never silently dropped.
	ErrInvalidTransition = errors.New("invalid honor result transition")
)

const (
	overrideReasonMinLen = 1
	overrideReasonMaxLen = 1000
)

// Type is a named honor tier, e.g. "With Honors", "Dean's List".
type Type struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Rank      int       `json:"rank"` // display ordering; higher tiers first
	CreatedAt time.Time `json:"created_at"`
}

// Criterion is one honor type's qualification rule, scoped to an academic
// level (null = applies broadly). Nullable bounds are simply not enforced.
type Criterion struct {
	ID                     string          `json:"id"`
	HonorTypeID            string          `json:"honor_type_id"`
	LevelID                null.String     `json:"level_id,omitempty"`
	MinGPA                 null.Float64    `json:"min_gpa,omitempty"`
	MaxGPA                 null.Float64    `json:"max_gpa,omitempty"`
	MinGradeAll            null.Float64    `json:"min_grade_all,omitempty"` // floor applying to every subject grade
	MinYear                null.Int        `json:"min_year,omitempty"`
	MaxYear                null.Int        `json:"max_year,omitempty"`
	RequireConsistentHonor bool            `json:"require_consistent_honor"`
	Rules                  json.RawMessage `json:"rules,omitempty"` // free-form rule extension
	CreatedAt              time.Time       `json:"created_at"`      // UTC
}

// NewCriterion contains information needed to create a Criterion.
type NewCriterion struct {
	HonorTypeID            string          `json:"honor_type_id" validate:"required"`
	LevelID                null.String     `json:"level_id"`
	MinGPA                 null.Float64    `json:"min_gpa"`
	MaxGPA                 null.Float64    `json:"max_gpa"`
	MinGradeAll            null.Float64    `json:"min_grade_all"`
	MinYear                null.Int        `json:"min_year"`
	MaxYear                null.Int        `json:"max_year"`
	RequireConsistentHonor bool            `json:"require_consistent_honor"`
	Rules                  json.RawMessage `json:"rules"`
}

func (nc *NewCriterion) Validate() error {
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	if nc.MinGPA.Valid && nc.MaxGPA.Valid && nc.MinGPA.Float64 > nc.MaxGPA.Float64 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "min_gpa",
			Error: "minimum GPA cannot exceed maximum GPA",
		})
	}
	if nc.MinYear.Valid && nc.MaxYear.Valid && nc.MinYear.Int > nc.MaxYear.Int {
		return core.NewValidationError(nil, core.FieldError{
			Field: "min_year",
			Error: "minimum year cannot exceed maximum year",
		})
	}
	return nil
}

// Status is the approval-workflow state of a Result. Revocation is a
// separate soft-active flag so a restored result returns to its prior
// approval state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusOverridden Status = "overridden"
)

// Result is the persisted qualification outcome for a (student, honor type,
// level, school year) key; at most one active row exists per key.
type Result struct {
	ID             string      `json:"id"`
	StudentID      string      `json:"student_id"`
	HonorTypeID    string      `json:"honor_type_id"`
	LevelID        string      `json:"level_id"`
	SchoolYear     string      `json:"school_year"`
	GPA            float64     `json:"gpa"`
	Status         Status      `json:"status"`
	OverrideReason null.String `json:"override_reason,omitempty"`
	IsActive       bool        `json:"is_active"`
	DecidedBy      null.String `json:"decided_by,omitempty"`
	DecidedAt      null.Time   `json:"decided_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

// AwardedAt is the ranking tiebreak timestamp: the decision time when a
// decision was made, the computation time otherwise.
func (r Result) AwardedAt() time.Time {
	if r.DecidedAt.Valid {
		return r.DecidedAt.Time
	}
	return r.CreatedAt
}

// MarshalJSON exposes the legacy boolean workflow flags alongside the
// status enum for consumers that still expect them.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		IsPendingApproval bool `json:"is_pending_approval"`
		IsApproved        bool `json:"is_approved"`
		IsRejected        bool `json:"is_rejected"`
		IsOverridden      bool `json:"is_overridden"`
	}{
		alias:             alias(r),
		IsPendingApproval: r.Status == StatusPending,
		IsApproved:        r.Status == StatusApproved,
		IsRejected:        r.Status == StatusRejected,
		IsOverridden:      r.Status == StatusOverridden,
	})
}

// Qualification is one criterion's evaluation outcome for a student.
type Qualification struct {
	Criterion Criterion `json:"criterion"`
	Qualifies bool      `json:"qualifies"`
	GPA       float64   `json:"computed_gpa"`
	Reason    string    `json:"reason,omitempty"` // first failed gate, empty when qualified
}

// ResultFilter selects persisted results; zero values are skipped.
// An empty SchoolYear aggregates across all school years for the level.
type ResultFilter struct {
	LevelID         string
	SchoolYear      string
	StudentID       string
	HonorTypeID     string
	IncludeInactive bool
}

// BatchSummary reports a generation run: per-student failures are counted
// and skipped, never allowed to abort the batch.
type BatchSummary struct {
	Processed int      `json:"processed"`
	Qualified int      `json:"qualified"`
	Skipped   int      `json:"skipped"`
	SkippedID []string `json:"skipped_student_ids,omitempty"`
}

// RankedResult is a Result with its rank position and student display data.
type RankedResult struct {
	Rank        int    `json:"rank"`
	StudentName string `json:"student_name"`
	Result      Result `json:"result"`
}

// TypeCount is one honor type's share of a distribution.
type TypeCount struct {
	HonorTypeID string `json:"honor_type_id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
}

// ExportRow is one flat row of the honor-roll export.
type ExportRow struct {
	StudentNo   string
	StudentName string
	Honor       string
	GPA         float64
	Overridden  bool
	Reason      string
}
