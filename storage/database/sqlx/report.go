package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) QueryEnrollment(ctx context.Context, academicYearID string) ([]report.EnrollmentRow, error) {
	rows := []report.EnrollmentRow{}
	err := selectAll(ctx, repo.db, &rows, `
		SELECT c.id AS class_id, c.name AS class_name, f.name AS form_name, st.name AS stream_name,
			COUNT(sc.student_id) AS student_count
		FROM classes c
		JOIN forms f ON f.id = c.form_id
		JOIN streams st ON st.id = c.stream_id
		LEFT JOIN student_classes sc ON sc.class_id = c.id
		WHERE c.academic_year_id = ?
		GROUP BY c.id, c.name, f.name, st.name, f.display_order
		ORDER BY f.display_order, st.name`, academicYearID)
	return rows, trap(err, core.ErrNotFound, "querying enrollment")
}

func (repo reportRepository) QueryGenderDistribution(ctx context.Context, academicYearID string) ([]report.GenderCount, error) {
	counts := []report.GenderCount{}
	err := selectAll(ctx, repo.db, &counts, `
		SELECT s.gender, COUNT(*) AS count
		FROM students s
		JOIN student_classes sc ON sc.student_id = s.id
		WHERE sc.academic_year_id = ?
		GROUP BY s.gender
		ORDER BY s.gender`, academicYearID)
	return counts, trap(err, core.ErrNotFound, "querying gender distribution")
}

func (repo reportRepository) QueryCandidates(ctx context.Context, academicYearID string, forms []string) ([]report.Candidate, error) {
	candidates := []report.Candidate{}
	err := selectIn(ctx, repo.db, &candidates, `
		SELECT s.id AS student_id, s.first_name, s.last_name, s.gender,
			s.date_of_birth,
			c.name AS class_name, f.name AS form_name
		FROM students s
		JOIN student_classes sc ON sc.student_id = s.id
		JOIN classes c ON c.id = sc.class_id
		JOIN forms f ON f.id = c.form_id
		WHERE sc.academic_year_id = ? AND f.name IN (?)
		ORDER BY f.display_order, c.name, s.last_name, s.first_name`, academicYearID, forms)
	return candidates, trap(err, core.ErrNotFound, "querying zimsec candidates")
}
