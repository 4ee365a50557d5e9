package student

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("student not found")

// Student is the directory entry the honor engine consults: profile data
// only, no credentials (account management lives elsewhere).
type Student struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	StudentNo   string    `json:"student_no"`
	LevelID     string    `json:"level_id"`
	YearOfStudy null.Int  `json:"year_of_study,omitempty"` // multi-year programs only
	Section     string    `json:"section,omitempty"`
	Department  string    `json:"department,omitempty"`
	Course      string    `json:"course,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// InYearRange reports whether the student's year of study falls within the
// optional [min, max] bounds. A student without a year of study fails any
// bounded check.
func (st Student) InYearRange(min, max null.Int) bool {
	if !min.Valid && !max.Valid {
		return true
	}
	if !st.YearOfStudy.Valid {
		return false
	}
	year := st.YearOfStudy.Int
	if min.Valid && year < min.Int {
		return false
	}
	if max.Valid && year > max.Int {
		return false
	}
	return true
}

// QueryFilter applies AND on available fields; zero values are skipped.
type QueryFilter struct {
	LevelID    string `query:"level"`
	Section    string `query:"section"`
	Department string `query:"department"`
	Course     string `query:"course"`
	IsActive   *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.LevelID == "" && qf.Section == "" && qf.Department == "" && qf.Course == "" && qf.IsActive == nil
}
