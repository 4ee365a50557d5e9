package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
)

const schoolYear = "2024-2025"

func seedLevel(srv *testServer, key string) academic.Level {
	return srv.DB.AddLevel(academic.Level{Key: key, Name: key})
}

func seedStudent(t *testing.T, srv *testServer, name, levelID string) student.Student {
	now := time.Now().UTC()
	st, err := srv.StudentRepo.CreateStudent(context.Background(), student.Student{
		Name: name, LevelID: levelID, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seedStudent() failed: %v", err)
	}
	return st
}

func seedGrade(t *testing.T, srv *testServer, studentID, levelID string, g float64) {
	now := time.Now().UTC()
	_, err := srv.GradeRepo.CreateGrade(context.Background(), grade.StudentGrade{
		StudentID: studentID, SubjectID: "sub", LevelID: levelID, SchoolYear: schoolYear,
		Grade: g, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seedGrade() failed: %v", err)
	}
}

func TestHonorAPI_createCriterion(t *testing.T) {
	srv := setupServer(t)
	lvl := seedLevel(srv, academic.LevelSeniorHigh)
	withHonors := srv.DB.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	rec := doRequest(srv, http.MethodPost, "/v1/honors/criteria", jsonBody(t, honor.NewCriterion{
		HonorTypeID: withHonors.ID,
		LevelID:     null.StringFrom(lvl.ID),
		MinGPA:      null.Float64From(90),
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var c honor.Criterion
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, withHonors.ID, c.HonorTypeID)

	// missing honor type
	rec = doRequest(srv, http.MethodPost, "/v1/honors/criteria", jsonBody(t, honor.NewCriterion{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHonorAPI_generateAndWorkflow(t *testing.T) {
	srv := setupServer(t)
	lvl := seedLevel(srv, academic.LevelSeniorHigh)
	withHonors := srv.DB.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	rec := doRequest(srv, http.MethodPost, "/v1/honors/criteria", jsonBody(t, honor.NewCriterion{
		HonorTypeID: withHonors.ID,
		LevelID:     null.StringFrom(lvl.ID),
		MinGPA:      null.Float64From(90),
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	st := seedStudent(t, srv, "Amina", lvl.ID)
	seedGrade(t, srv, st.ID, lvl.ID, 95)

	rec = doRequest(srv, http.MethodPost, "/v1/honors/generate", jsonBody(t, GenerateRequest{
		LevelID: lvl.ID, SchoolYear: schoolYear,
	}))
	assert.Equal(t, http.StatusOK, rec.Code)

	var summary honor.BatchSummary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Qualified)

	rec = doRequest(srv, http.MethodGet, "/v1/honors/results?level="+lvl.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var results []honor.Result
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	if !assert.Len(t, results, 1) {
		return
	}
	assert.Equal(t, honor.StatusPending, results[0].Status)

	// approve, then a second approve conflicts
	path := "/v1/honors/results/" + results[0].ID + "/approve"
	rec = doRequest(srv, http.MethodPost, path, jsonBody(t, DecisionRequest{Actor: "principal"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, path, jsonBody(t, DecisionRequest{Actor: "principal"}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHonorAPI_decisionRequiresActor(t *testing.T) {
	srv := setupServer(t)
	lvl := seedLevel(srv, academic.LevelSeniorHigh)
	withHonors := srv.DB.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	st := seedStudent(t, srv, "Amina", lvl.ID)
	now := time.Now().UTC()
	r, err := srv.HonorRepo.CreateResult(context.Background(), honor.Result{
		StudentID: st.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear,
		GPA: 95, Status: honor.StatusPending, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}

	// an anonymous decision never reaches the audit trail
	rec := doRequest(srv, http.MethodPost, "/v1/honors/results/"+r.ID+"/approve",
		jsonBody(t, DecisionRequest{Actor: ""}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "actor")

	rec = doRequest(srv, http.MethodGet, "/v1/honors/results/"+r.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got honor.Result
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, honor.StatusPending, got.Status)
	assert.False(t, got.DecidedBy.Valid)

	// override demands its full audit payload too
	rec = doRequest(srv, http.MethodPost, "/v1/honors/results/"+r.ID+"/override",
		jsonBody(t, OverrideRequest{HonorTypeID: withHonors.ID, Actor: "principal"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reason")
}

func TestHonorAPI_generateRequiresLevel(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(srv, http.MethodPost, "/v1/honors/generate", jsonBody(t, GenerateRequest{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "level_id")
}

func TestHonorAPI_resultsOrdering(t *testing.T) {
	srv := setupServer(t)
	lvl := seedLevel(srv, academic.LevelSeniorHigh)
	withHonors := srv.DB.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	now := time.Now().UTC()
	for _, tc := range []struct {
		name string
		gpa  float64
	}{{"Brian", 92}, {"Amina", 96}} {
		st := seedStudent(t, srv, tc.name, lvl.ID)
		_, err := srv.HonorRepo.CreateResult(context.Background(), honor.Result{
			StudentID: st.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear,
			GPA: tc.gpa, Status: honor.StatusApproved, IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateResult() failed: %v", err)
		}
	}

	rec := doRequest(srv, http.MethodGet, "/v1/honors/results?level="+lvl.ID+"&ordering=-gpa", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var results []honor.Result
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	if assert.Len(t, results, 2) {
		assert.Equal(t, float64(96), results[0].GPA)
		assert.Equal(t, float64(92), results[1].GPA)
	}

	rec = doRequest(srv, http.MethodGet, "/v1/honors/results?level="+lvl.ID+"&ordering=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHonorAPI_rankingsAndExport(t *testing.T) {
	srv := setupServer(t)
	lvl := seedLevel(srv, academic.LevelSeniorHigh)
	withHonors := srv.DB.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	now := time.Now().UTC()
	for _, tc := range []struct {
		name string
		gpa  float64
	}{{"Amina", 96}, {"Brian", 92}} {
		st := seedStudent(t, srv, tc.name, lvl.ID)
		_, err := srv.HonorRepo.CreateResult(context.Background(), honor.Result{
			StudentID: st.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear,
			GPA: tc.gpa, Status: honor.StatusApproved, IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateResult() failed: %v", err)
		}
	}

	// level param is required
	rec := doRequest(srv, http.MethodGet, "/v1/honors/rankings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/v1/honors/rankings?level="+lvl.ID+"&year="+schoolYear, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ranked []honor.RankedResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	if assert.Len(t, ranked, 2) {
		assert.Equal(t, "Amina", ranked[0].StudentName)
		assert.Equal(t, 1, ranked[0].Rank)
	}

	rec = doRequest(srv, http.MethodGet, "/v1/honors/export?level="+lvl.ID+"&year="+schoolYear, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Student ID,Name,Honor,GPA,Overridden,Reason")
	assert.Contains(t, rec.Body.String(), "Amina")
}

func TestHonorAPI_unknownResult(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(srv, http.MethodGet, "/v1/honors/results/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
