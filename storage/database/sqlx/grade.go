package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

type gradeRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	SubjectID   string      `db:"subject_id"`
	LevelID     string      `db:"level_id"`
	PeriodID    null.String `db:"period_id"`
	SchoolYear  string      `db:"school_year"`
	Grade       float64     `db:"grade"`
	YearOfStudy null.Int    `db:"year_of_study"`
	Submitted   bool        `db:"submitted"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r gradeRow) toDomain() grade.StudentGrade {
	return grade.StudentGrade{
		ID:          r.ID,
		StudentID:   r.StudentID,
		SubjectID:   r.SubjectID,
		LevelID:     r.LevelID,
		PeriodID:    r.PeriodID,
		SchoolYear:  r.SchoolYear,
		Grade:       r.Grade,
		YearOfStudy: r.YearOfStudy,
		Submitted:   r.Submitted,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (repo gradeRepository) CreateGrade(ctx context.Context, g grade.StudentGrade) (grade.StudentGrade, error) {
	g.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
        INSERT INTO student_grades (id, student_id, subject_id, level_id, period_id,
                                    school_year, grade, year_of_study, submitted, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.StudentID, g.SubjectID, g.LevelID, g.PeriodID,
		g.SchoolYear, g.Grade, g.YearOfStudy, g.Submitted, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return grade.StudentGrade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo gradeRepository) GetGradeByID(ctx context.Context, id string) (grade.StudentGrade, error) {
	var row gradeRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student_grades WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return grade.StudentGrade{}, grade.ErrNotFound
		}
		return grade.StudentGrade{}, errors.Wrap(err, "getting grade")
	}
	return row.toDomain(), nil
}

func (repo gradeRepository) UpdateGrade(ctx context.Context, g grade.StudentGrade) (grade.StudentGrade, error) {
	res, err := repo.db.ExecContext(ctx, `
        UPDATE student_grades
        SET grade = $1, updated_at = $2
        WHERE id = $3`,
		g.Grade, g.UpdatedAt, g.ID)
	if err != nil {
		return grade.StudentGrade{}, errors.Wrap(err, "updating grade")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return grade.StudentGrade{}, errors.Wrap(err, "updating grade")
	}
	if n == 0 {
		return grade.StudentGrade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo gradeRepository) SubmitGrades(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE student_grades SET submitted = true WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building submit query")
	}
	query = repo.db.Rebind(query)
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "submitting grades")
	}
	return nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.StudentGrade, error) {
	query := `SELECT * FROM student_grades`
	var clauses []string
	var args []interface{}

	addClause := func(cond string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}
	if filter.StudentID != "" {
		addClause("student_id = $%d", filter.StudentID)
	}
	if filter.LevelID != "" {
		addClause("level_id = $%d", filter.LevelID)
	}
	if filter.SchoolYear != "" {
		addClause("school_year = $%d", filter.SchoolYear)
	}
	if filter.PeriodID != "" {
		addClause("period_id = $%d", filter.PeriodID)
	}
	if filter.YearMin.Valid {
		addClause("(year_of_study IS NULL OR year_of_study >= $%d)", filter.YearMin.Int)
	}
	if filter.YearMax.Valid {
		addClause("(year_of_study IS NULL OR year_of_study <= $%d)", filter.YearMax.Int)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at"

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.StudentGrade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toDomain())
	}
	return grades, nil
}
