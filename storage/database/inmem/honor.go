package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/honor"
)

type honorRepository struct {
	db *honorTable
}

var _ honor.Repository = (*honorRepository)(nil) // interface compliance check

func NewHonorRepository(db *DB) honor.Repository {
	return &honorRepository{db: db.honor}
}

// AddHonorType seeds an honor type directly; tests stand in for migrations here.
func (db *DB) AddHonorType(t honor.Type) honor.Type {
	db.honor.Lock()
	defer db.honor.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	db.honor.types[t.ID] = &t
	return t
}

func (repo *honorRepository) QueryHonorTypes(ctx context.Context) ([]honor.Type, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	types := make([]honor.Type, 0, len(repo.db.types))
	for _, t := range repo.db.types {
		types = append(types, *t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Rank < types[j].Rank })
	return types, nil
}

func (repo *honorRepository) GetHonorTypeByID(ctx context.Context, id string) (honor.Type, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.types[id]; ok {
		return *t, nil
	}
	return honor.Type{}, honor.ErrTypeNotFound
}

func (repo *honorRepository) CreateCriterion(ctx context.Context, c honor.Criterion) (honor.Criterion, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.criteria[c.ID] = &c
	return c, nil
}

func (repo *honorRepository) CriterionExists(ctx context.Context, levelID null.String, honorTypeID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.criteria {
		if c.HonorTypeID == honorTypeID && c.LevelID == levelID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *honorRepository) QueryCriteriaForLevel(ctx context.Context, levelID string) ([]honor.Criterion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var criteria []honor.Criterion
	for _, c := range repo.db.criteria {
		if !c.LevelID.Valid || c.LevelID.String == levelID {
			criteria = append(criteria, *c)
		}
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i].CreatedAt.After(criteria[j].CreatedAt) })
	return criteria, nil
}

func (repo *honorRepository) GetResultByID(ctx context.Context, id string) (honor.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.results[id]; ok {
		return *r, nil
	}
	return honor.Result{}, honor.ErrNotFound
}

func (repo *honorRepository) GetResultByKey(ctx context.Context, studentID, honorTypeID, levelID, schoolYear string, _ ...core.DBExecutor) (honor.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.results {
		if r.StudentID == studentID && r.HonorTypeID == honorTypeID &&
			r.LevelID == levelID && r.SchoolYear == schoolYear {
			return *r, nil
		}
	}
	return honor.Result{}, honor.ErrNotFound
}

func (repo *honorRepository) CreateResult(ctx context.Context, r honor.Result, _ ...core.DBExecutor) (honor.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = uuid.New().String()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *honorRepository) UpdateResult(ctx context.Context, r honor.Result, _ ...core.DBExecutor) (honor.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.results[r.ID]; !ok {
		return honor.Result{}, honor.ErrNotFound
	}
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *honorRepository) HasPriorApprovedResult(ctx context.Context, studentID, levelID, excludeYear string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.results {
		if r.StudentID == studentID && r.LevelID == levelID && r.SchoolYear != excludeYear &&
			r.Status == honor.StatusApproved && r.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (repo *honorRepository) QueryResults(ctx context.Context, filter honor.ResultFilter, ordering []core.DBOrdering) ([]honor.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var results []honor.Result
	for _, r := range repo.db.results {
		if filter.LevelID != "" && r.LevelID != filter.LevelID {
			continue
		}
		if filter.SchoolYear != "" && r.SchoolYear != filter.SchoolYear {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.HonorTypeID != "" && r.HonorTypeID != filter.HonorTypeID {
			continue
		}
		if !filter.IncludeInactive && !r.IsActive {
			continue
		}
		results = append(results, *r)
	}
	if len(ordering) == 0 {
		sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
		return results, nil
	}
	// stable multi-key sort: apply orderings from least to most significant
	for k := len(ordering) - 1; k >= 0; k-- {
		ord := ordering[k]
		sort.SliceStable(results, func(i, j int) bool {
			if ord.Ascending {
				return resultLess(results[i], results[j], ord.Field)
			}
			return resultLess(results[j], results[i], ord.Field)
		})
	}
	return results, nil
}

func resultLess(a, b honor.Result, field string) bool {
	switch field {
	case "gpa":
		return a.GPA < b.GPA
	case "school_year":
		return a.SchoolYear < b.SchoolYear
	case "status":
		return a.Status < b.Status
	case "decided_at":
		return a.DecidedAt.Time.Before(b.DecidedAt.Time)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
