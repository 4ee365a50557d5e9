package academic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core"
)

func errParentLevelMismatch() error {
	return core.NewValidationError(nil, core.FieldError{
		Field: "parent_id",
		Error: "parent period must belong to the same academic level",
	})
}

type (
	Repository interface {
		QueryLevels(ctx context.Context) ([]Level, error)
		GetLevelByID(ctx context.Context, id string) (Level, error)
		GetLevelByKey(ctx context.Context, key string) (Level, error)
		CreateGradingPeriod(ctx context.Context, p GradingPeriod) (GradingPeriod, error)
		GetGradingPeriodByID(ctx context.Context, id string) (GradingPeriod, error)
		QueryGradingPeriodsByLevel(ctx context.Context, levelID string) ([]GradingPeriod, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Levels(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryLevels(ctx)
}

func (svc *Service) LevelByID(ctx context.Context, id string) (Level, error) {
	return svc.repo.GetLevelByID(ctx, id)
}

func (svc *Service) LevelByKey(ctx context.Context, key string) (Level, error) {
	return svc.repo.GetLevelByKey(ctx, key)
}

// ScaleForLevel resolves the grading scale of a level by id.
func (svc *Service) ScaleForLevel(ctx context.Context, levelID string) (Scale, error) {
	lvl, err := svc.repo.GetLevelByID(ctx, levelID)
	if err != nil {
		return Scale{}, err
	}
	scale, ok := ScaleFor(lvl.Key)
	if !ok {
		return Scale{}, errors.Errorf("no grading scale for level key %q", lvl.Key)
	}
	return scale, nil
}

func (svc *Service) CreateGradingPeriod(ctx context.Context, np NewGradingPeriod) (GradingPeriod, error) {
	if err := np.Validate(); err != nil {
		return GradingPeriod{}, err
	}
	if _, err := svc.repo.GetLevelByID(ctx, np.LevelID); err != nil {
		return GradingPeriod{}, errors.Wrap(err, "resolving level")
	}
	// a nested period must belong to the same level as its parent
	if np.ParentID.Valid {
		parent, err := svc.repo.GetGradingPeriodByID(ctx, np.ParentID.String)
		if err != nil {
			return GradingPeriod{}, errors.Wrap(err, "resolving parent period")
		}
		if parent.LevelID != np.LevelID {
			return GradingPeriod{}, errParentLevelMismatch()
		}
	}

	p := GradingPeriod{
		LevelID:   np.LevelID,
		ParentID:  np.ParentID,
		Name:      np.Name,
		Weight:    np.Weight,
		SortOrder: np.SortOrder,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateGradingPeriod(ctx, p)
}

func (svc *Service) GradingPeriodsByLevel(ctx context.Context, levelID string) ([]GradingPeriod, error) {
	return svc.repo.QueryGradingPeriodsByLevel(ctx, levelID)
}
