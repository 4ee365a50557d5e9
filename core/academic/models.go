package academic

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
)

// Academic level keys. Levels are reference data created at setup time;
// the keys are stable and safe to branch on.
const (
	LevelElementary = "elementary"
	LevelJuniorHigh = "junior_high"
	LevelSeniorHigh = "senior_high"
	LevelCollege    = "college"
)

var (
	ErrLevelNotFound  = errors.New("academic level not found")
	ErrPeriodNotFound = errors.New("grading period not found")
)

type Level struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// GradingPeriod is a quarter, semester or sub-term within a level.
// A period may nest under a parent period (semester -> midterm/final);
// Weight is used by levels that compute a weighted final.
type GradingPeriod struct {
	ID        string      `json:"id"`
	LevelID   string      `json:"level_id"`
	ParentID  null.String `json:"parent_id,omitempty"`
	Name      string      `json:"name"`
	Weight    float64     `json:"weight"`
	SortOrder int         `json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// NewGradingPeriod contains information needed to create a GradingPeriod.
type NewGradingPeriod struct {
	LevelID   string      `json:"level_id" validate:"required"`
	ParentID  null.String `json:"parent_id"`
	Name      string      `json:"name" validate:"required"`
	Weight    float64     `json:"weight" validate:"gte=0,lte=1"`
	SortOrder int         `json:"sort_order"`
}

func (np *NewGradingPeriod) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

// SchoolYear is a school year in "YYYY-YYYY+1" format, e.g. "2024-2025".
type SchoolYear string

func (sy SchoolYear) String() string { return string(sy) }

// Start returns the starting calendar year.
func (sy SchoolYear) Start() int {
	start, _ := strconv.Atoi(strings.SplitN(string(sy), "-", 2)[0])
	return start
}

func (sy SchoolYear) Prev() SchoolYear {
	start := sy.Start()
	return SchoolYear(fmt.Sprintf("%d-%d", start-1, start))
}

func (sy SchoolYear) Next() SchoolYear {
	start := sy.Start()
	return SchoolYear(fmt.Sprintf("%d-%d", start+1, start+2))
}

func (sy SchoolYear) Validate() error {
	if !schoolYearValid(string(sy)) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "school_year",
			Error: schoolYearText,
		})
	}
	return nil
}

func schoolYearValid(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return end == start+1
}
