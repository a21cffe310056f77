package client

import (
	"context"
	"net/http"

	"github.com/trezcool/chikoro/core/report"
)

type ReportsAPI struct{ c *Client }

func (api ReportsAPI) Enrollment(ctx context.Context, academicYearID string) ([]report.EnrollmentRow, error) {
	var rows []report.EnrollmentRow
	err := api.c.get(ctx, "/reports/enrollment", params("academic_year_id", academicYearID), &rows)
	return rows, err
}

// ExportEnrollment downloads the enrollment report as a "csv" or "xlsx" file.
func (api ReportsAPI) ExportEnrollment(ctx context.Context, academicYearID, format string) ([]byte, error) {
	q := params("academic_year_id", academicYearID, "format", format)
	return api.c.do(ctx, http.MethodGet, "/reports/enrollment", q, "", nil)
}

func (api ReportsAPI) GenderDistribution(ctx context.Context, academicYearID string) ([]report.GenderCount, error) {
	var counts []report.GenderCount
	err := api.c.get(ctx, "/reports/gender-distribution", params("academic_year_id", academicYearID), &counts)
	return counts, err
}

func (api ReportsAPI) ZimsecCandidates(ctx context.Context, academicYearID string) ([]report.Candidate, error) {
	var candidates []report.Candidate
	err := api.c.get(ctx, "/reports/zimsec-candidates", params("academic_year_id", academicYearID), &candidates)
	return candidates, err
}
