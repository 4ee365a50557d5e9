package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
	inmemdb "github.com/edusuite/honoris/storage/database/inmem"
)

type testServer struct {
	Server

	DB          *inmemdb.DB
	StudentRepo student.Repository
	GradeRepo   grade.Repository
	HonorRepo   honor.Repository
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setupServer(t *testing.T) *testServer {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setupServer() failed: %v", err)
	}
	academicSvc := academic.NewService(inmemdb.NewAcademicRepository(db))
	studentRepo := inmemdb.NewStudentRepository(db)
	gradeRepo := inmemdb.NewGradeRepository(db)
	honorRepo := inmemdb.NewHonorRepository(db)
	studentSvc := student.NewService(studentRepo)
	gradeSvc := grade.NewService(gradeRepo, academicSvc)
	honorSvc := honor.NewService(db, honorRepo, academicSvc, studentSvc, gradeSvc, nopLogger{})

	return &testServer{
		Server: NewServer(&Options{
			Addr:           ":0",
			DisableReqLogs: true,
			Logger:         nopLogger{},
			AcademicSvc:    academicSvc,
			StudentSvc:     studentSvc,
			GradeSvc:       gradeSvc,
			HonorSvc:       honorSvc,
		}),
		DB:          db,
		StudentRepo: studentRepo,
		GradeRepo:   gradeRepo,
		HonorRepo:   honorRepo,
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("jsonBody() failed: %v", err)
	}
	return bytes.NewBuffer(data)
}

func doRequest(srv *testServer, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}
