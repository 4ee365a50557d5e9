package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/honor"
)

type honorRepository struct {
	db *sqlx.DB
}

var _ honor.Repository = (*honorRepository)(nil) // interface compliance check

func NewHonorRepository(db *sqlx.DB) *honorRepository {
	return &honorRepository{db: db}
}

type honorTypeRow struct {
	ID        string    `db:"id"`
	Key       string    `db:"key"`
	Name      string    `db:"name"`
	Rank      int       `db:"rank"`
	CreatedAt time.Time `db:"created_at"`
}

func (r honorTypeRow) toDomain() honor.Type {
	return honor.Type{ID: r.ID, Key: r.Key, Name: r.Name, Rank: r.Rank, CreatedAt: r.CreatedAt}
}

type criterionRow struct {
	ID                     string       `db:"id"`
	HonorTypeID            string       `db:"honor_type_id"`
	LevelID                null.String  `db:"level_id"`
	MinGPA                 null.Float64 `db:"min_gpa"`
	MaxGPA                 null.Float64 `db:"max_gpa"`
	MinGradeAll            null.Float64 `db:"min_grade_all"`
	MinYear                null.Int     `db:"min_year"`
	MaxYear                null.Int     `db:"max_year"`
	RequireConsistentHonor bool         `db:"require_consistent_honor"`
	Rules                  []byte       `db:"rules"`
	CreatedAt              time.Time    `db:"created_at"`
}

func (r criterionRow) toDomain() honor.Criterion {
	return honor.Criterion{
		ID:                     r.ID,
		HonorTypeID:            r.HonorTypeID,
		LevelID:                r.LevelID,
		MinGPA:                 r.MinGPA,
		MaxGPA:                 r.MaxGPA,
		MinGradeAll:            r.MinGradeAll,
		MinYear:                r.MinYear,
		MaxYear:                r.MaxYear,
		RequireConsistentHonor: r.RequireConsistentHonor,
		Rules:                  json.RawMessage(r.Rules),
		CreatedAt:              r.CreatedAt,
	}
}

const resultColumns = `id, student_id, honor_type_id, level_id, school_year, gpa, status,
       override_reason, is_active, decided_by, decided_at, created_at, updated_at`

type resultRow struct {
	ID             string      `db:"id"`
	StudentID      string      `db:"student_id"`
	HonorTypeID    string      `db:"honor_type_id"`
	LevelID        string      `db:"level_id"`
	SchoolYear     string      `db:"school_year"`
	GPA            float64     `db:"gpa"`
	Status         string      `db:"status"`
	OverrideReason null.String `db:"override_reason"`
	IsActive       bool        `db:"is_active"`
	DecidedBy      null.String `db:"decided_by"`
	DecidedAt      null.Time   `db:"decided_at"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r resultRow) toDomain() honor.Result {
	return honor.Result{
		ID:             r.ID,
		StudentID:      r.StudentID,
		HonorTypeID:    r.HonorTypeID,
		LevelID:        r.LevelID,
		SchoolYear:     r.SchoolYear,
		GPA:            r.GPA,
		Status:         honor.Status(r.Status),
		OverrideReason: r.OverrideReason,
		IsActive:       r.IsActive,
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func scanResult(row *sql.Row) (honor.Result, error) {
	var r resultRow
	err := row.Scan(
		&r.ID, &r.StudentID, &r.HonorTypeID, &r.LevelID, &r.SchoolYear, &r.GPA, &r.Status,
		&r.OverrideReason, &r.IsActive, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return honor.Result{}, honor.ErrNotFound
		}
		return honor.Result{}, errors.Wrap(err, "scanning honor result")
	}
	return r.toDomain(), nil
}

func (repo honorRepository) QueryHonorTypes(ctx context.Context) ([]honor.Type, error) {
	var rows []honorTypeRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM honor_types ORDER BY rank`)
	if err != nil {
		return nil, errors.Wrap(err, "querying honor types")
	}
	types := make([]honor.Type, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.toDomain())
	}
	return types, nil
}

func (repo honorRepository) GetHonorTypeByID(ctx context.Context, id string) (honor.Type, error) {
	var row honorTypeRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM honor_types WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return honor.Type{}, honor.ErrTypeNotFound
		}
		return honor.Type{}, errors.Wrap(err, "getting honor type")
	}
	return row.toDomain(), nil
}

func (repo honorRepository) CreateCriterion(ctx context.Context, c honor.Criterion) (honor.Criterion, error) {
	c.ID = uuid.New().String()
	var rules interface{}
	if len(c.Rules) > 0 {
		rules = []byte(c.Rules)
	}
	_, err := repo.db.ExecContext(ctx, `
        INSERT INTO honor_criteria (id, honor_type_id, level_id, min_gpa, max_gpa, min_grade_all,
                                    min_year, max_year, require_consistent_honor, rules, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.HonorTypeID, c.LevelID, c.MinGPA, c.MaxGPA, c.MinGradeAll,
		c.MinYear, c.MaxYear, c.RequireConsistentHonor, rules, c.CreatedAt)
	if err != nil {
		return honor.Criterion{}, errors.Wrap(err, "inserting criterion")
	}
	return c, nil
}

func (repo honorRepository) CriterionExists(ctx context.Context, levelID null.String, honorTypeID string) (bool, error) {
	var exists bool
	var err error
	if levelID.Valid {
		err = repo.db.GetContext(ctx, &exists, `
            SELECT EXISTS(SELECT 1 FROM honor_criteria WHERE honor_type_id = $1 AND level_id = $2)`,
			honorTypeID, levelID.String)
	} else {
		err = repo.db.GetContext(ctx, &exists, `
            SELECT EXISTS(SELECT 1 FROM honor_criteria WHERE honor_type_id = $1 AND level_id IS NULL)`,
			honorTypeID)
	}
	return exists, errors.Wrap(err, "checking criterion existence")
}

func (repo honorRepository) QueryCriteriaForLevel(ctx context.Context, levelID string) ([]honor.Criterion, error) {
	var rows []criterionRow
	err := repo.db.SelectContext(ctx, &rows, `
        SELECT * FROM honor_criteria
        WHERE level_id = $1 OR level_id IS NULL
        ORDER BY created_at DESC`, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "querying criteria")
	}
	criteria := make([]honor.Criterion, 0, len(rows))
	for _, row := range rows {
		criteria = append(criteria, row.toDomain())
	}
	return criteria, nil
}

func (repo honorRepository) GetResultByID(ctx context.Context, id string) (honor.Result, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM honor_results WHERE id = $1`, id)
	return scanResult(row)
}

func (repo honorRepository) GetResultByKey(ctx context.Context, studentID, honorTypeID, levelID, schoolYear string, exec ...core.DBExecutor) (honor.Result, error) {
	row := getExec(repo.db, exec).QueryRowContext(ctx, `
        SELECT `+resultColumns+` FROM honor_results
        WHERE student_id = $1 AND honor_type_id = $2 AND level_id = $3 AND school_year = $4`,
		studentID, honorTypeID, levelID, schoolYear)
	return scanResult(row)
}

func (repo honorRepository) CreateResult(ctx context.Context, r honor.Result, exec ...core.DBExecutor) (honor.Result, error) {
	r.ID = uuid.New().String()
	_, err := getExec(repo.db, exec).ExecContext(ctx, `
        INSERT INTO honor_results (id, student_id, honor_type_id, level_id, school_year, gpa, status,
                                   override_reason, is_active, decided_by, decided_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.StudentID, r.HonorTypeID, r.LevelID, r.SchoolYear, r.GPA, string(r.Status),
		r.OverrideReason, r.IsActive, r.DecidedBy, r.DecidedAt, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return honor.Result{}, errors.Wrap(err, "inserting honor result")
	}
	return r, nil
}

func (repo honorRepository) UpdateResult(ctx context.Context, r honor.Result, exec ...core.DBExecutor) (honor.Result, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `
        UPDATE honor_results
        SET honor_type_id = $1, gpa = $2, status = $3, override_reason = $4,
            is_active = $5, decided_by = $6, decided_at = $7, updated_at = $8
        WHERE id = $9`,
		r.HonorTypeID, r.GPA, string(r.Status), r.OverrideReason,
		r.IsActive, r.DecidedBy, r.DecidedAt, r.UpdatedAt, r.ID)
	if err != nil {
		return honor.Result{}, errors.Wrap(err, "updating honor result")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return honor.Result{}, errors.Wrap(err, "updating honor result")
	}
	if n == 0 {
		return honor.Result{}, honor.ErrNotFound
	}
	return r, nil
}

func (repo honorRepository) HasPriorApprovedResult(ctx context.Context, studentID, levelID, excludeYear string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `
        SELECT EXISTS(
            SELECT 1 FROM honor_results
            WHERE student_id = $1 AND level_id = $2 AND school_year <> $3
              AND status = 'approved' AND is_active = true)`,
		studentID, levelID, excludeYear)
	return exists, errors.Wrap(err, "checking prior honor standing")
}

func (repo honorRepository) QueryResults(ctx context.Context, filter honor.ResultFilter, ordering []core.DBOrdering) ([]honor.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM honor_results`
	var clauses []string
	var args []interface{}

	addClause := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.LevelID != "" {
		addClause("level_id", filter.LevelID)
	}
	if filter.SchoolYear != "" {
		addClause("school_year", filter.SchoolYear)
	}
	if filter.StudentID != "" {
		addClause("student_id", filter.StudentID)
	}
	if filter.HonorTypeID != "" {
		addClause("honor_type_id", filter.HonorTypeID)
	}
	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active = true")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	} else {
		query += " ORDER BY created_at"
	}

	var rows []resultRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying honor results")
	}
	results := make([]honor.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toDomain())
	}
	return results, nil
}
