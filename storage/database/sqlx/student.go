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

	"github.com/edusuite/honoris/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type studentRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	StudentNo   string    `db:"student_no"`
	LevelID     string    `db:"level_id"`
	YearOfStudy null.Int  `db:"year_of_study"`
	Section     string    `db:"section"`
	Department  string    `db:"department"`
	Course      string    `db:"course"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r studentRow) toDomain() student.Student {
	return student.Student{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		StudentNo:   r.StudentNo,
		LevelID:     r.LevelID,
		YearOfStudy: r.YearOfStudy,
		Section:     r.Section,
		Department:  r.Department,
		Course:      r.Course,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
        INSERT INTO students (id, name, email, student_no, level_id, year_of_study,
                              section, department, course, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		st.ID, st.Name, st.Email, st.StudentNo, st.LevelID, st.YearOfStudy,
		st.Section, st.Department, st.Course, st.IsActive, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toDomain(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM students`
	var clauses []string
	var args []interface{}

	addClause := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.LevelID != "" {
		addClause("level_id", filter.LevelID)
	}
	if filter.Section != "" {
		addClause("section", filter.Section)
	}
	if filter.Department != "" {
		addClause("department", filter.Department)
	}
	if filter.Course != "" {
		addClause("course", filter.Course)
	}
	if filter.IsActive != nil {
		addClause("is_active", *filter.IsActive)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toDomain())
	}
	return students, nil
}
