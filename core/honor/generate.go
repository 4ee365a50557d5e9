package honor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/student"
)

// Generate runs the honor roll for every student of a level: each student
// is evaluated against the level's criteria and qualifying outcomes are
// upserted as pending results. One student's failure is counted and skipped,
// not allowed to abort the run; all upserts of a run share one transaction
// so a mid-batch failure leaves none of the run's rows behind.
//
// An empty schoolYear falls back to the configured active school year.
func (svc *Service) Generate(ctx context.Context, levelID, schoolYear string, filter student.QueryFilter) (BatchSummary, error) {
	var summary BatchSummary

	if schoolYear == "" {
		schoolYear = core.Conf.ActiveSchoolYear
	}
	if err := academic.SchoolYear(schoolYear).Validate(); err != nil {
		return summary, err
	}
	if _, err := svc.academicSvc.LevelByID(ctx, levelID); err != nil {
		return summary, errors.Wrap(err, "resolving level")
	}

	filter.LevelID = levelID
	students, err := svc.studentSvc.Filter(ctx, filter)
	if err != nil {
		return summary, errors.Wrap(err, "querying students")
	}

	type pendingUpsert struct {
		studentID   string
		honorTypeID string
		gpa         float64
	}
	var upserts []pendingUpsert

	for _, st := range students {
		quals, err := svc.Evaluate(ctx, st.ID, levelID, schoolYear)
		if err != nil {
			svc.log.Warn("skipping student in honor roll generation", err, st)
			summary.Skipped++
			summary.SkippedID = append(summary.SkippedID, st.ID)
			continue
		}
		summary.Processed++

		for _, q := range quals {
			if !q.Qualifies {
				continue
			}
			summary.Qualified++
			upserts = append(upserts, pendingUpsert{
				studentID:   st.ID,
				honorTypeID: q.Criterion.HonorTypeID,
				gpa:         q.GPA,
			})
		}
	}

	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		for _, up := range upserts {
			if _, err := svc.upsert(ctx, up.studentID, up.honorTypeID, levelID, schoolYear, up.gpa, tx); err != nil {
				return errors.Wrapf(err, "upserting result for student %s", up.studentID)
			}
		}
		return nil
	})
	if err != nil {
		return BatchSummary{}, err
	}
	return summary, nil
}

// Recalculate evaluates and upserts a single student's results, outside of
// any batch. Recomputation is idempotent per (student, type, level, year).
func (svc *Service) Recalculate(ctx context.Context, studentID, levelID, schoolYear string) ([]Qualification, error) {
	if schoolYear == "" {
		schoolYear = core.Conf.ActiveSchoolYear
	}
	quals, err := svc.Evaluate(ctx, studentID, levelID, schoolYear)
	if err != nil {
		return nil, err
	}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		for _, q := range quals {
			if !q.Qualifies {
				continue
			}
			if _, err := svc.upsert(ctx, studentID, q.Criterion.HonorTypeID, levelID, schoolYear, q.GPA, tx); err != nil {
				return errors.Wrap(err, "upserting result")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quals, nil
}
