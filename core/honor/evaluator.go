package honor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/student"
)

// Gate failure reasons, recorded on non-qualifying evaluations.
const (
	reasonNoData        = "no grade data"
	reasonYearOfStudy   = "year of study outside criterion bounds"
	reasonBelowMinGPA   = "GPA below minimum"
	reasonAboveMaxGPA   = "GPA above maximum"
	reasonSubjectFloor  = "a subject grade falls below the per-subject floor"
	reasonNotConsistent = "no consistent honor standing in a prior school year"
)

// Evaluate scores a student against every criterion active for the level,
// yielding one Qualification per criterion. A student may qualify for more
// than one honor type at once; only duplicates within a (student, type)
// pair are collapsed by the criteria query (most recent rule wins).
func (svc *Service) Evaluate(ctx context.Context, studentID, levelID, schoolYear string) ([]Qualification, error) {
	if err := academic.SchoolYear(schoolYear).Validate(); err != nil {
		return nil, err
	}
	lvl, err := svc.academicSvc.LevelByID(ctx, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving level")
	}
	scale, ok := academic.ScaleFor(lvl.Key)
	if !ok {
		return nil, errors.Errorf("no grading scale for level key %q", lvl.Key)
	}
	st, err := svc.studentSvc.GetByID(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student")
	}

	criteria, err := svc.repo.QueryCriteriaForLevel(ctx, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "querying criteria")
	}
	// duplicates per honor type should not occur (uniqueness is enforced at
	// creation); if they do, the most recently created record wins
	seen := make(map[string]bool, len(criteria))

	quals := make([]Qualification, 0, len(criteria))
	for _, c := range criteria {
		if seen[c.HonorTypeID] {
			continue
		}
		seen[c.HonorTypeID] = true
		q, err := svc.evaluateCriterion(ctx, c, st, levelID, schoolYear, scale)
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, nil
}

func (svc *Service) evaluateCriterion(
	ctx context.Context,
	c Criterion,
	st student.Student,
	levelID, schoolYear string,
	scale academic.Scale,
) (Qualification, error) {
	q := Qualification{Criterion: c}

	if !st.InYearRange(c.MinYear, c.MaxYear) {
		q.Reason = reasonYearOfStudy
		return q, nil
	}

	summary, err := svc.gradeSvc.Aggregate(ctx, st.ID, levelID, schoolYear,
		grade.QueryFilter{YearMin: c.MinYear, YearMax: c.MaxYear})
	if err != nil {
		// an empty selection means "not qualified", never an error;
		// anything else is a real failure for the caller to handle
		if errors.Cause(err) != grade.ErrNoData {
			return q, errors.Wrap(err, "aggregating grades")
		}
		q.Reason = reasonNoData
		return q, nil
	}
	q.GPA = summary.GPA

	// numeric gates in fixed order, short-circuiting on first failure;
	// comparison direction comes from the level's scale
	if c.MinGPA.Valid && !scale.MeetsMin(summary.GPA, c.MinGPA.Float64) {
		q.Reason = reasonBelowMinGPA
		return q, nil
	}
	if c.MaxGPA.Valid && !scale.WithinMax(summary.GPA, c.MaxGPA.Float64) {
		q.Reason = reasonAboveMaxGPA
		return q, nil
	}
	if c.MinGradeAll.Valid && !scale.MeetsMin(summary.Worst(scale), c.MinGradeAll.Float64) {
		q.Reason = reasonSubjectFloor
		return q, nil
	}
	if c.RequireConsistentHonor {
		prior, err := svc.repo.HasPriorApprovedResult(ctx, st.ID, levelID, schoolYear)
		if err != nil {
			return q, errors.Wrap(err, "checking prior honor standing")
		}
		if !prior {
			q.Reason = reasonNotConsistent
			return q, nil
		}
	}

	q.Qualifies = true
	return q, nil
}
