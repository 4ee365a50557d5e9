package honor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/student"
)

type (
	Repository interface {
		QueryHonorTypes(ctx context.Context) ([]Type, error)
		GetHonorTypeByID(ctx context.Context, id string) (Type, error)
		CreateCriterion(ctx context.Context, c Criterion) (Criterion, error)
		CriterionExists(ctx context.Context, levelID null.String, honorTypeID string) (bool, error)
		// QueryCriteriaForLevel returns level-scoped and broadly-scoped
		// criteria, most recently created first.
		QueryCriteriaForLevel(ctx context.Context, levelID string) ([]Criterion, error)
		GetResultByID(ctx context.Context, id string) (Result, error)
		// GetResultByKey looks up the unique row for
		// (student, honor type, level, school year).
		GetResultByKey(ctx context.Context, studentID, honorTypeID, levelID, schoolYear string, exec ...core.DBExecutor) (Result, error)
		CreateResult(ctx context.Context, r Result, exec ...core.DBExecutor) (Result, error)
		UpdateResult(ctx context.Context, r Result, exec ...core.DBExecutor) (Result, error)
		// HasPriorApprovedResult reports whether the student holds an
		// approved, non-overridden, active result for the level in any
		// school year other than excludeYear.
		HasPriorApprovedResult(ctx context.Context, studentID, levelID, excludeYear string) (bool, error)
		QueryResults(ctx context.Context, filter ResultFilter, ordering []core.DBOrdering) ([]Result, error)
	}

	Service struct {
		db          core.DB
		repo        Repository
		academicSvc *academic.Service
		studentSvc  *student.Service
		gradeSvc    *grade.Service
		log         core.Logger
	}
)

func NewService(
	db core.DB,
	repo Repository,
	academicSvc *academic.Service,
	studentSvc *student.Service,
	gradeSvc *grade.Service,
	log core.Logger,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		academicSvc: academicSvc,
		studentSvc:  studentSvc,
		gradeSvc:    gradeSvc,
		log:         log,
	}
}

func (svc *Service) Types(ctx context.Context) ([]Type, error) {
	return svc.repo.QueryHonorTypes(ctx)
}

// CreateCriterion validates and persists a qualification rule. Uniqueness
// on (level, honor type) is enforced at creation time; evaluation falls
// back to the most recently created record should duplicates still occur.
func (svc *Service) CreateCriterion(ctx context.Context, nc NewCriterion) (Criterion, error) {
	if err := nc.Validate(); err != nil {
		return Criterion{}, err
	}
	if _, err := svc.repo.GetHonorTypeByID(ctx, nc.HonorTypeID); err != nil {
		return Criterion{}, errors.Wrap(err, "resolving honor type")
	}
	if nc.LevelID.Valid {
		if _, err := svc.academicSvc.LevelByID(ctx, nc.LevelID.String); err != nil {
			return Criterion{}, errors.Wrap(err, "resolving level")
		}
	}
	exists, err := svc.repo.CriterionExists(ctx, nc.LevelID, nc.HonorTypeID)
	if err != nil {
		return Criterion{}, errors.Wrap(err, "checking criterion uniqueness")
	}
	if exists {
		return Criterion{}, core.NewValidationError(nil, core.FieldError{
			Field: "honor_type_id",
			Error: "a criterion for this honor type and level already exists",
		})
	}

	c := Criterion{
		HonorTypeID:            nc.HonorTypeID,
		LevelID:                nc.LevelID,
		MinGPA:                 nc.MinGPA,
		MaxGPA:                 nc.MaxGPA,
		MinGradeAll:            nc.MinGradeAll,
		MinYear:                nc.MinYear,
		MaxYear:                nc.MaxYear,
		RequireConsistentHonor: nc.RequireConsistentHonor,
		Rules:                  nc.Rules,
		CreatedAt:              time.Now().UTC(),
	}
	return svc.repo.CreateCriterion(ctx, c)
}

func (svc *Service) CriteriaForLevel(ctx context.Context, levelID string) ([]Criterion, error) {
	return svc.repo.QueryCriteriaForLevel(ctx, levelID)
}

func (svc *Service) ResultByID(ctx context.Context, id string) (Result, error) {
	return svc.repo.GetResultByID(ctx, id)
}

// resultOrderFields are the result columns callers may order by.
var resultOrderFields = map[string]bool{
	"gpa":         true,
	"school_year": true,
	"status":      true,
	"decided_at":  true,
	"created_at":  true,
}

func (svc *Service) Results(ctx context.Context, filter ResultFilter, ordering []core.DBOrdering) ([]Result, error) {
	for _, ord := range ordering {
		if !resultOrderFields[ord.Field] {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "ordering", Error: fmt.Sprintf("cannot order by %q", ord.Field)})
		}
	}
	return svc.repo.QueryResults(ctx, filter, ordering)
}

// upsert persists a qualification outcome. A fresh key starts pending; an
// existing row only gets its GPA snapshot refreshed so recomputation never
// clobbers a human decision.
func (svc *Service) upsert(ctx context.Context, studentID, honorTypeID, levelID, schoolYear string, gpa float64, exec ...core.DBExecutor) (Result, error) {
	now := time.Now().UTC()

	existing, err := svc.repo.GetResultByKey(ctx, studentID, honorTypeID, levelID, schoolYear, exec...)
	switch errors.Cause(err) {
	case nil:
		existing.GPA = gpa
		existing.UpdatedAt = now
		return svc.repo.UpdateResult(ctx, existing, exec...)
	case ErrNotFound:
		r := Result{
			StudentID:   studentID,
			HonorTypeID: honorTypeID,
			LevelID:     levelID,
			SchoolYear:  schoolYear,
			GPA:         gpa,
			Status:      StatusPending,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return svc.repo.CreateResult(ctx, r, exec...)
	default:
		return Result{}, errors.Wrap(err, "looking up honor result")
	}
}

// Approve transitions a pending result to approved. Rejected or revoked
// results must be explicitly reset first; the transition is refused rather
// than flags combined.
func (svc *Service) Approve(ctx context.Context, id, actor string) (Result, error) {
	return svc.decide(ctx, id, actor, StatusApproved)
}

// Reject transitions a pending result to rejected. No reason is required
// (unlike Override).
func (svc *Service) Reject(ctx context.Context, id, actor string) (Result, error) {
	return svc.decide(ctx, id, actor, StatusRejected)
}

func (svc *Service) decide(ctx context.Context, id, actor string, to Status) (Result, error) {
	r, err := svc.repo.GetResultByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !r.IsActive {
		return Result{}, errors.Wrapf(ErrInvalidTransition, "result is revoked; restore it first")
	}
	if r.Status != StatusPending {
		return Result{}, errors.Wrapf(ErrInvalidTransition, "cannot move a %s result to %s", r.Status, to)
	}

	now := time.Now().UTC()
	r.Status = to
	r.DecidedBy = null.StringFrom(actor)
	r.DecidedAt = null.TimeFrom(now)
	r.UpdatedAt = now
	return svc.repo.UpdateResult(ctx, r)
}

// Override assigns a different honor type than computed, from any workflow
// state. The reason is mandatory and retained permanently, even through a
// later revoke/restore cycle.
func (svc *Service) Override(ctx context.Context, id, newHonorTypeID, actor, reason string) (Result, error) {
	reason = core.CleanString(reason)
	if len(reason) < overrideReasonMinLen || len(reason) > overrideReasonMaxLen {
		return Result{}, core.NewValidationError(nil, core.FieldError{
			Field: "reason",
			Error: "an override reason of 1 to 1000 characters is required",
		})
	}
	if _, err := svc.repo.GetHonorTypeByID(ctx, newHonorTypeID); err != nil {
		return Result{}, errors.Wrap(err, "resolving honor type")
	}

	r, err := svc.repo.GetResultByID(ctx, id)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	r.HonorTypeID = newHonorTypeID
	r.Status = StatusOverridden
	r.OverrideReason = null.StringFrom(reason)
	r.DecidedBy = null.StringFrom(actor)
	r.DecidedAt = null.TimeFrom(now)
	r.UpdatedAt = now
	return svc.repo.UpdateResult(ctx, r)
}

// Revoke soft-deactivates a result so it vanishes from rankings and exports
// while remaining auditable. The row is never deleted.
func (svc *Service) Revoke(ctx context.Context, id, actor string) (Result, error) {
	r, err := svc.repo.GetResultByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !r.IsActive {
		return Result{}, errors.Wrap(ErrInvalidTransition, "result is already revoked")
	}

	r.IsActive = false
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateResult(ctx, r)
}

// Restore reactivates a revoked result to its prior approval state; the
// workflow status is untouched by revocation.
func (svc *Service) Restore(ctx context.Context, id, actor string) (Result, error) {
	r, err := svc.repo.GetResultByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if r.IsActive {
		return Result{}, errors.Wrap(ErrInvalidTransition, "result is not revoked")
	}

	r.IsActive = true
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateResult(ctx, r)
}
