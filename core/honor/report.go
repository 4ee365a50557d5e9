package honor

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core/academic"
)

// Rank orders a level's results best-GPA-first using the level's scale
// direction, breaking ties by awarded date (newest first). An empty
// schoolYear ranks across all school years of the level. Revoked results
// are excluded unless includeInactive is set.
func (svc *Service) Rank(ctx context.Context, levelID, schoolYear string, includeInactive bool) ([]RankedResult, error) {
	lvl, err := svc.academicSvc.LevelByID(ctx, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving level")
	}
	scale, ok := academic.ScaleFor(lvl.Key)
	if !ok {
		return nil, errors.Errorf("no grading scale for level key %q", lvl.Key)
	}

	results, err := svc.repo.QueryResults(ctx, ResultFilter{
		LevelID:         levelID,
		SchoolYear:      schoolYear,
		IncludeInactive: includeInactive,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying results")
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].GPA != results[j].GPA {
			return scale.Better(results[i].GPA, results[j].GPA)
		}
		return results[i].AwardedAt().After(results[j].AwardedAt())
	})

	ranked := make([]RankedResult, 0, len(results))
	for i, r := range results {
		rr := RankedResult{Rank: i + 1, Result: r}
		if st, err := svc.studentSvc.GetByID(ctx, r.StudentID); err == nil {
			rr.StudentName = st.Name
		}
		ranked = append(ranked, rr)
	}
	return ranked, nil
}

// Distribution counts a level's results per honor type. An empty schoolYear
// aggregates across all school years.
func (svc *Service) Distribution(ctx context.Context, levelID, schoolYear string) ([]TypeCount, error) {
	results, err := svc.repo.QueryResults(ctx, ResultFilter{
		LevelID:    levelID,
		SchoolYear: schoolYear,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	types, err := svc.repo.QueryHonorTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying honor types")
	}

	counts := make(map[string]int, len(types))
	for _, r := range results {
		counts[r.HonorTypeID]++
	}

	dist := make([]TypeCount, 0, len(types))
	for _, t := range types {
		dist = append(dist, TypeCount{HonorTypeID: t.ID, Name: t.Name, Count: counts[t.ID]})
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].Count > dist[j].Count })
	return dist, nil
}

// ExportRows flattens a level's ranked results into export-ready rows.
func (svc *Service) ExportRows(ctx context.Context, levelID, schoolYear string, includeInactive bool) ([]ExportRow, error) {
	ranked, err := svc.Rank(ctx, levelID, schoolYear, includeInactive)
	if err != nil {
		return nil, err
	}
	types, err := svc.repo.QueryHonorTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying honor types")
	}
	typeNames := make(map[string]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	rows := make([]ExportRow, 0, len(ranked))
	for _, rr := range ranked {
		var studentNo string
		if st, err := svc.studentSvc.GetByID(ctx, rr.Result.StudentID); err == nil {
			studentNo = st.StudentNo
		}
		rows = append(rows, ExportRow{
			StudentNo:   studentNo,
			StudentName: rr.StudentName,
			Honor:       typeNames[rr.Result.HonorTypeID],
			GPA:         rr.Result.GPA,
			Overridden:  rr.Result.Status == StatusOverridden,
			Reason:      rr.Result.OverrideReason.String,
		})
	}
	return rows, nil
}

// WriteCSV writes export rows as a flat CSV table.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Student ID", "Name", "Honor", "GPA", "Overridden", "Reason"}); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}
	for _, row := range rows {
		record := []string{
			row.StudentNo,
			row.StudentName,
			row.Honor,
			strconv.FormatFloat(row.GPA, 'f', 2, 64),
			strconv.FormatBool(row.Overridden),
			row.Reason,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}
