// Package inmemdb provides in-memory Repository implementations for tests.
package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
)

type (
	DB struct {
		academic *academicTable
		student  *studentTable
		grade    *gradeTable
		honor    *honorTable
	}

	academicTable struct {
		sync.RWMutex
		levels  map[string]*academic.Level
		periods map[string]*academic.GradingPeriod
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.StudentGrade
	}

	honorTable struct {
		sync.RWMutex
		types    map[string]*honor.Type
		criteria map[string]*honor.Criterion
		results  map[string]*honor.Result
	}
)

func Open() (*DB, error) {
	db := &DB{
		academic: &academicTable{
			levels:  make(map[string]*academic.Level),
			periods: make(map[string]*academic.GradingPeriod),
		},
		student: &studentTable{table: make(map[string]*student.Student)},
		grade:   &gradeTable{table: make(map[string]*grade.StudentGrade)},
		honor: &honorTable{
			types:    make(map[string]*honor.Type),
			criteria: make(map[string]*honor.Criterion),
			results:  make(map[string]*honor.Result),
		},
	}
	return db, nil
}

var _ core.DB = (*DB)(nil) // interface compliance check

// The in-memory repositories ignore the transaction executor, so the
// core.DB surface below is a no-op that only satisfies core.Atomic.

func (db *DB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (db *DB) QueryRow(string, ...interface{}) *sql.Row                     { return nil }
func (db *DB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{db}, nil
}

type noopTx struct{ *DB }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
