package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edusuite/honoris/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.StudentGrade) (grade.StudentGrade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id string) (grade.StudentGrade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return grade.StudentGrade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.StudentGrade) (grade.StudentGrade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[g.ID]; !ok {
		return grade.StudentGrade{}, grade.ErrNotFound
	}
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) SubmitGrades(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if g, ok := repo.db.table[id]; ok {
			g.Submitted = true
		}
	}
	return nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.StudentGrade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []grade.StudentGrade
	for _, g := range repo.db.table {
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		if filter.LevelID != "" && g.LevelID != filter.LevelID {
			continue
		}
		if filter.SchoolYear != "" && g.SchoolYear != filter.SchoolYear {
			continue
		}
		if filter.PeriodID != "" && g.PeriodID.String != filter.PeriodID {
			continue
		}
		if filter.YearMin.Valid && g.YearOfStudy.Valid && g.YearOfStudy.Int < filter.YearMin.Int {
			continue
		}
		if filter.YearMax.Valid && g.YearOfStudy.Valid && g.YearOfStudy.Int > filter.YearMax.Int {
			continue
		}
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.Before(grades[j].CreatedAt) })
	return grades, nil
}
