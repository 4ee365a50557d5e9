package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edusuite/honoris/core/academic"
)

type academicRepository struct {
	db *academicTable
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

// AddLevel seeds a level directly; tests stand in for migrations here.
func (db *DB) AddLevel(lvl academic.Level) academic.Level {
	db.academic.Lock()
	defer db.academic.Unlock()

	if lvl.ID == "" {
		lvl.ID = uuid.New().String()
	}
	db.academic.levels[lvl.ID] = &lvl
	return lvl
}

func (repo *academicRepository) QueryLevels(ctx context.Context) ([]academic.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	levels := make([]academic.Level, 0, len(repo.db.levels))
	for _, lvl := range repo.db.levels {
		levels = append(levels, *lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].SortOrder < levels[j].SortOrder })
	return levels, nil
}

func (repo *academicRepository) GetLevelByID(ctx context.Context, id string) (academic.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lvl, ok := repo.db.levels[id]; ok {
		return *lvl, nil
	}
	return academic.Level{}, academic.ErrLevelNotFound
}

func (repo *academicRepository) GetLevelByKey(ctx context.Context, key string) (academic.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lvl := range repo.db.levels {
		if lvl.Key == key {
			return *lvl, nil
		}
	}
	return academic.Level{}, academic.ErrLevelNotFound
}

func (repo *academicRepository) CreateGradingPeriod(ctx context.Context, p academic.GradingPeriod) (academic.GradingPeriod, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = uuid.New().String()
	repo.db.periods[p.ID] = &p
	return p, nil
}

func (repo *academicRepository) GetGradingPeriodByID(ctx context.Context, id string) (academic.GradingPeriod, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.periods[id]; ok {
		return *p, nil
	}
	return academic.GradingPeriod{}, academic.ErrPeriodNotFound
}

func (repo *academicRepository) QueryGradingPeriodsByLevel(ctx context.Context, levelID string) ([]academic.GradingPeriod, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var periods []academic.GradingPeriod
	for _, p := range repo.db.periods {
		if p.LevelID == levelID {
			periods = append(periods, *p)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].SortOrder < periods[j].SortOrder })
	return periods, nil
}
