package grade

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g StudentGrade) (StudentGrade, error)
		GetGradeByID(ctx context.Context, id string) (StudentGrade, error)
		UpdateGrade(ctx context.Context, g StudentGrade) (StudentGrade, error)
		SubmitGrades(ctx context.Context, ids ...string) error
		// QueryGrades applies AND operation on available QueryFilter fields.
		QueryGrades(ctx context.Context, filter QueryFilter) ([]StudentGrade, error)
	}

	Service struct {
		repo        Repository
		academicSvc *academic.Service
	}
)

func NewService(repo Repository, academicSvc *academic.Service) *Service {
	return &Service{repo: repo, academicSvc: academicSvc}
}

func (svc *Service) Create(ctx context.Context, ng NewStudentGrade) (StudentGrade, error) {
	scale, err := svc.academicSvc.ScaleForLevel(ctx, ng.LevelID)
	if err != nil {
		return StudentGrade{}, errors.Wrap(err, "resolving grading scale")
	}
	if err = ng.Validate(scale); err != nil {
		return StudentGrade{}, err
	}

	now := time.Now().UTC()
	g := StudentGrade{
		StudentID:   ng.StudentID,
		SubjectID:   ng.SubjectID,
		LevelID:     ng.LevelID,
		PeriodID:    ng.PeriodID,
		SchoolYear:  ng.SchoolYear,
		Grade:       ng.Grade,
		YearOfStudy: ng.YearOfStudy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *Service) GetByID(ctx context.Context, id string) (StudentGrade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

// Update modifies a grade entry within its edit window; submitted or
// out-of-window entries are locked.
func (svc *Service) Update(ctx context.Context, id string, ug UpdateStudentGrade) (StudentGrade, error) {
	g, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return StudentGrade{}, err
	}
	if !g.CanEdit(time.Now().UTC()) {
		return StudentGrade{}, core.NewValidationError(nil, core.FieldError{
			Field: "grade",
			Error: "grade entry is locked for editing",
		})
	}
	scale, err := svc.academicSvc.ScaleForLevel(ctx, g.LevelID)
	if err != nil {
		return StudentGrade{}, errors.Wrap(err, "resolving grading scale")
	}
	if err = ug.Validate(scale); err != nil {
		return StudentGrade{}, err
	}

	g.Grade = ug.Grade
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

// Submit locks grade entries for validation; they are no longer editable.
func (svc *Service) Submit(ctx context.Context, ids ...string) error {
	return svc.repo.SubmitGrades(ctx, ids...)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]StudentGrade, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

// Aggregate collects all qualifying grade entries for a student within a
// level and school year and computes summary statistics. An empty selection
// yields ErrNoData.
func (svc *Service) Aggregate(ctx context.Context, studentID, levelID string, schoolYear string, bounds ...QueryFilter) (Summary, error) {
	filter := QueryFilter{
		StudentID:  studentID,
		LevelID:    levelID,
		SchoolYear: schoolYear,
	}
	if len(bounds) > 0 {
		filter.YearMin = bounds[0].YearMin
		filter.YearMax = bounds[0].YearMax
	}

	grades, err := svc.repo.QueryGrades(ctx, filter)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying grades")
	}
	if len(grades) == 0 {
		return Summary{}, ErrNoData
	}

	lvl, err := svc.academicSvc.LevelByID(ctx, levelID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "resolving level")
	}
	periods, err := svc.academicSvc.GradingPeriodsByLevel(ctx, levelID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying grading periods")
	}
	periodsByID := make(map[string]academic.GradingPeriod, len(periods))
	for _, p := range periods {
		periodsByID[p.ID] = p
	}

	s := Summary{
		Minimum: grades[0].Grade,
		Maximum: grades[0].Grade,
		Count:   len(grades),
	}
	perPeriod := make(map[string]*PeriodSummary)
	var sum float64
	for _, g := range grades {
		sum += g.Grade
		if g.Grade < s.Minimum {
			s.Minimum = g.Grade
		}
		if g.Grade > s.Maximum {
			s.Maximum = g.Grade
		}
		if g.PeriodID.Valid {
			ps, ok := perPeriod[g.PeriodID.String]
			if !ok {
				ps = &PeriodSummary{PeriodID: g.PeriodID.String}
				if p, found := periodsByID[g.PeriodID.String]; found {
					ps.Name = p.Name
					ps.Weight = p.Weight
				}
				perPeriod[g.PeriodID.String] = ps
			}
			ps.Average += g.Grade // running sum; divided below
			ps.Count++
		}
	}
	s.Average = sum / float64(len(grades))

	for _, ps := range perPeriod {
		ps.Average /= float64(ps.Count)
		s.Periods = append(s.Periods, *ps)
	}
	sort.Slice(s.Periods, func(i, j int) bool {
		pi, pj := periodsByID[s.Periods[i].PeriodID], periodsByID[s.Periods[j].PeriodID]
		return pi.SortOrder < pj.SortOrder
	})

	// college computes a weighted final over period averages; K-12 levels
	// use the plain mean
	if lvl.Key == academic.LevelCollege {
		s.GPA = s.weightedFinal()
	} else {
		s.GPA = s.Average
	}
	return s, nil
}
