package honor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
)

func (env *testEnv) addResult(t *testing.T, r honor.Result) honor.Result {
	t.Helper()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
		r.UpdatedAt = r.CreatedAt
	}
	if r.Status == "" {
		r.Status = honor.StatusApproved
	}
	r.IsActive = true
	r, err := env.honorRepo.CreateResult(context.Background(), r)
	if err != nil {
		t.Fatalf("addResult() failed: %v", err)
	}
	return r
}

func TestService_Rank_k12(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelSeniorHigh, Name: "Senior High"})
	withHonors := env.db.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	amina := env.addStudent(t, student.Student{Name: "Amina", LevelID: lvl.ID})
	brian := env.addStudent(t, student.Student{Name: "Brian", LevelID: lvl.ID})
	chris := env.addStudent(t, student.Student{Name: "Chris", LevelID: lvl.ID})

	env.addResult(t, honor.Result{
		StudentID: brian.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 92,
	})
	env.addResult(t, honor.Result{
		StudentID: amina.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 96,
	})
	env.addResult(t, honor.Result{
		StudentID: chris.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 94,
	})

	ranked, err := env.honorSvc.Rank(ctx, lvl.ID, schoolYear, false)
	if err != nil {
		t.Fatalf("Rank() failed: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d ranked results, want 3", len(ranked))
	}
	wantOrder := []string{"Amina", "Chris", "Brian"}
	for i, rr := range ranked {
		if rr.Rank != i+1 {
			t.Errorf("Rank[%d] = %d, want %d", i, rr.Rank, i+1)
		}
		if rr.StudentName != wantOrder[i] {
			t.Errorf("position %d = %s, want %s", i, rr.StudentName, wantOrder[i])
		}
	}
}

func TestService_Rank_collegeInverted(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelCollege, Name: "College"})
	deansList := env.db.AddHonorType(honor.Type{Key: "deans_list", Name: "Dean's List", Rank: 4})

	amina := env.addStudent(t, student.Student{Name: "Amina", LevelID: lvl.ID})
	brian := env.addStudent(t, student.Student{Name: "Brian", LevelID: lvl.ID})

	env.addResult(t, honor.Result{
		StudentID: amina.ID, HonorTypeID: deansList.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 1.75,
	})
	env.addResult(t, honor.Result{
		StudentID: brian.ID, HonorTypeID: deansList.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 1.25,
	})

	ranked, err := env.honorSvc.Rank(ctx, lvl.ID, schoolYear, false)
	if err != nil {
		t.Fatalf("Rank() failed: %v", err)
	}
	// on the college scale the lower GPA ranks first
	if ranked[0].StudentName != "Brian" || ranked[1].StudentName != "Amina" {
		t.Errorf("order = %s, %s; want Brian, Amina", ranked[0].StudentName, ranked[1].StudentName)
	}
}

func TestService_Rank_tiebreakByAwardDate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelSeniorHigh, Name: "Senior High"})
	withHonors := env.db.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	amina := env.addStudent(t, student.Student{Name: "Amina", LevelID: lvl.ID})
	brian := env.addStudent(t, student.Student{Name: "Brian", LevelID: lvl.ID})
	now := time.Now().UTC()

	env.addResult(t, honor.Result{
		StudentID: amina.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear,
		GPA: 92, DecidedAt: null.TimeFrom(now.Add(-time.Hour)),
	})
	env.addResult(t, honor.Result{
		StudentID: brian.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear,
		GPA: 92, DecidedAt: null.TimeFrom(now),
	})

	ranked, err := env.honorSvc.Rank(ctx, lvl.ID, schoolYear, false)
	if err != nil {
		t.Fatalf("Rank() failed: %v", err)
	}
	// equal GPA: the most recently awarded ranks first
	if ranked[0].StudentName != "Brian" {
		t.Errorf("tiebreak winner = %s, want Brian", ranked[0].StudentName)
	}
}

func TestService_Distribution(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelSeniorHigh, Name: "Senior High"})
	withHonors := env.db.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})
	highHonors := env.db.AddHonorType(honor.Type{Key: "with_high_honors", Name: "With High Honors", Rank: 2})
	env.db.AddHonorType(honor.Type{Key: "with_highest_honors", Name: "With Highest Honors", Rank: 3})

	for i, typeID := range []string{withHonors.ID, withHonors.ID, highHonors.ID} {
		st := env.addStudent(t, student.Student{Name: string(rune('A' + i)), LevelID: lvl.ID})
		env.addResult(t, honor.Result{
			StudentID: st.ID, HonorTypeID: typeID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 90,
		})
	}

	dist, err := env.honorSvc.Distribution(ctx, lvl.ID, schoolYear)
	if err != nil {
		t.Fatalf("Distribution() failed: %v", err)
	}
	if len(dist) != 3 {
		t.Fatalf("got %d type counts, want 3", len(dist))
	}
	if dist[0].Name != "With Honors" || dist[0].Count != 2 {
		t.Errorf("top slot = %s/%d, want With Honors/2", dist[0].Name, dist[0].Count)
	}
	if dist[1].Count != 1 || dist[2].Count != 0 {
		t.Errorf("counts = %d, %d; want 1, 0", dist[1].Count, dist[2].Count)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []honor.ExportRow{
		{StudentNo: "S-001", StudentName: "Amina", Honor: "With Honors", GPA: 95.5},
		{StudentNo: "S-002", StudentName: "Brian", Honor: "With High Honors", GPA: 97, Overridden: true, Reason: "board decision"},
	}

	var buf bytes.Buffer
	if err := honor.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want 3", len(lines))
	}
	if lines[0] != "Student ID,Name,Honor,GPA,Overridden,Reason" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "S-001,Amina,With Honors,95.50,false," {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "S-002,Brian,With High Honors,97.00,true,board decision" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestService_ExportRows(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelSeniorHigh, Name: "Senior High"})
	withHonors := env.db.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	st := env.addStudent(t, student.Student{Name: "Amina", StudentNo: "S-001", LevelID: lvl.ID})
	env.addResult(t, honor.Result{
		StudentID: st.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 95,
	})

	rows, err := env.honorSvc.ExportRows(ctx, lvl.ID, schoolYear, false)
	if err != nil {
		t.Fatalf("ExportRows() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.StudentNo != "S-001" || row.StudentName != "Amina" || row.Honor != "With Honors" || row.GPA != 95 {
		t.Errorf("ExportRow = %+v", row)
	}
}

func TestService_Results_ordering(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	lvl := env.db.AddLevel(academic.Level{Key: academic.LevelSeniorHigh, Name: "Senior High"})
	withHonors := env.db.AddHonorType(honor.Type{Key: "with_honors", Name: "With Honors", Rank: 1})

	amina := env.addStudent(t, student.Student{Name: "Amina", LevelID: lvl.ID})
	brian := env.addStudent(t, student.Student{Name: "Brian", LevelID: lvl.ID})
	chris := env.addStudent(t, student.Student{Name: "Chris", LevelID: lvl.ID})
	env.addResult(t, honor.Result{
		StudentID: brian.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 92,
	})
	env.addResult(t, honor.Result{
		StudentID: amina.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 96,
	})
	env.addResult(t, honor.Result{
		StudentID: chris.ID, HonorTypeID: withHonors.ID, LevelID: lvl.ID, SchoolYear: schoolYear, GPA: 94,
	})

	results, err := env.honorSvc.Results(ctx, honor.ResultFilter{LevelID: lvl.ID},
		[]core.DBOrdering{{Field: "gpa", Ascending: false}})
	if err != nil {
		t.Fatalf("Results() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []float64{96, 94, 92} {
		if results[i].GPA != want {
			t.Errorf("results[%d].GPA = %v, want %v", i, results[i].GPA, want)
		}
	}

	results, err = env.honorSvc.Results(ctx, honor.ResultFilter{LevelID: lvl.ID},
		[]core.DBOrdering{{Field: "gpa", Ascending: true}})
	if err != nil {
		t.Fatalf("Results() failed: %v", err)
	}
	if results[0].GPA != 92 {
		t.Errorf("results[0].GPA = %v, want 92", results[0].GPA)
	}

	// only known result columns may be ordered by
	_, err = env.honorSvc.Results(ctx, honor.ResultFilter{LevelID: lvl.ID},
		[]core.DBOrdering{{Field: "id; DROP TABLE honor_results"}})
	if !core.IsValidationError(err) {
		t.Errorf("Results() with unknown ordering field error = %v, want a validation error", err)
	}
}
