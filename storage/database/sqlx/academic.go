package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
)

// getExec returns the caller-provided executor (a transaction) when given,
// the repository's own handle otherwise.
func getExec(db *sqlx.DB, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 {
		return exec[0]
	}
	return db
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

type levelRow struct {
	ID        string    `db:"id"`
	Key       string    `db:"key"`
	Name      string    `db:"name"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}

func (r levelRow) toDomain() academic.Level {
	return academic.Level{ID: r.ID, Key: r.Key, Name: r.Name, SortOrder: r.SortOrder, CreatedAt: r.CreatedAt}
}

type periodRow struct {
	ID        string      `db:"id"`
	LevelID   string      `db:"level_id"`
	ParentID  null.String `db:"parent_id"`
	Name      string      `db:"name"`
	Weight    float64     `db:"weight"`
	SortOrder int         `db:"sort_order"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r periodRow) toDomain() academic.GradingPeriod {
	return academic.GradingPeriod{
		ID:        r.ID,
		LevelID:   r.LevelID,
		ParentID:  r.ParentID,
		Name:      r.Name,
		Weight:    r.Weight,
		SortOrder: r.SortOrder,
		CreatedAt: r.CreatedAt,
	}
}

func (repo academicRepository) QueryLevels(ctx context.Context) ([]academic.Level, error) {
	var rows []levelRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM academic_levels ORDER BY sort_order`)
	if err != nil {
		return nil, errors.Wrap(err, "querying academic levels")
	}
	levels := make([]academic.Level, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, row.toDomain())
	}
	return levels, nil
}

func (repo academicRepository) GetLevelByID(ctx context.Context, id string) (academic.Level, error) {
	var row levelRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM academic_levels WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Level{}, academic.ErrLevelNotFound
		}
		return academic.Level{}, errors.Wrap(err, "getting academic level")
	}
	return row.toDomain(), nil
}

func (repo academicRepository) GetLevelByKey(ctx context.Context, key string) (academic.Level, error) {
	var row levelRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM academic_levels WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Level{}, academic.ErrLevelNotFound
		}
		return academic.Level{}, errors.Wrap(err, "getting academic level")
	}
	return row.toDomain(), nil
}

func (repo academicRepository) CreateGradingPeriod(ctx context.Context, p academic.GradingPeriod) (academic.GradingPeriod, error) {
	p.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
        INSERT INTO grading_periods (id, level_id, parent_id, name, weight, sort_order, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.LevelID, p.ParentID, p.Name, p.Weight, p.SortOrder, p.CreatedAt)
	if err != nil {
		return academic.GradingPeriod{}, errors.Wrap(err, "inserting grading period")
	}
	return p, nil
}

func (repo academicRepository) GetGradingPeriodByID(ctx context.Context, id string) (academic.GradingPeriod, error) {
	var row periodRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM grading_periods WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.GradingPeriod{}, academic.ErrPeriodNotFound
		}
		return academic.GradingPeriod{}, errors.Wrap(err, "getting grading period")
	}
	return row.toDomain(), nil
}

func (repo academicRepository) QueryGradingPeriodsByLevel(ctx context.Context, levelID string) ([]academic.GradingPeriod, error) {
	var rows []periodRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM grading_periods WHERE level_id = $1 ORDER BY sort_order`, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grading periods")
	}
	periods := make([]academic.GradingPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, row.toDomain())
	}
	return periods, nil
}
