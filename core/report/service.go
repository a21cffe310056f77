package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// CandidateForms are the forms whose students sit ZIMSEC examinations (O-Level, A-Level).
var CandidateForms = []string{"Form 4", "Form 6"}

var ErrUnknownFormat = errors.New("format must be one of json, csv, xlsx")

type (
	Repository interface {
		// QueryEnrollment counts the students of every class of the academic year, empty classes included.
		QueryEnrollment(ctx context.Context, academicYearID string) ([]EnrollmentRow, error)
		QueryGenderDistribution(ctx context.Context, academicYearID string) ([]GenderCount, error)
		QueryCandidates(ctx context.Context, academicYearID string, forms []string) ([]Candidate, error)
	}

	YearResolver interface {
		ResolveAcademicYear(ctx context.Context, id string) (string, error)
	}

	// SheetWriter renders a Sheet as a spreadsheet workbook.
	SheetWriter interface {
		WriteSheet(w io.Writer, sheet Sheet) error
	}

	Service struct {
		repo   Repository
		years  YearResolver
		sheets SheetWriter
	}
)

func NewService(repo Repository, years YearResolver, sheets SheetWriter) *Service {
	return &Service{repo: repo, years: years, sheets: sheets}
}

// Every report defaults to the current academic year and is empty when there is none.

func (svc *Service) Enrollment(ctx context.Context, academicYearID string) ([]EnrollmentRow, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, academicYearID)
	if err != nil || ayID == "" {
		return []EnrollmentRow{}, err
	}
	return svc.repo.QueryEnrollment(ctx, ayID)
}

func (svc *Service) GenderDistribution(ctx context.Context, academicYearID string) ([]GenderCount, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, academicYearID)
	if err != nil || ayID == "" {
		return []GenderCount{}, err
	}
	return svc.repo.QueryGenderDistribution(ctx, ayID)
}

func (svc *Service) ZimsecCandidates(ctx context.Context, academicYearID string) ([]Candidate, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, academicYearID)
	if err != nil || ayID == "" {
		return []Candidate{}, err
	}
	return svc.repo.QueryCandidates(ctx, ayID, CandidateForms)
}

func EnrollmentSheet(rows []EnrollmentRow) Sheet {
	sheet := Sheet{
		Name:   "Enrollment",
		Header: []string{"Class", "Form", "Stream", "Students"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []string{r.ClassName, r.FormName, r.StreamName, strconv.Itoa(r.StudentCount)})
	}
	return sheet
}

// Export writes sheet to w in the csv or xlsx format.
func (svc *Service) Export(w io.Writer, sheet Sheet, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, sheet)
	case FormatXLSX:
		return errors.Wrap(svc.sheets.WriteSheet(w, sheet), "writing xlsx")
	}
	return ErrUnknownFormat
}

func WriteCSV(w io.Writer, sheet Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(sheet.Rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}
