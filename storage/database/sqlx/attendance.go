package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	var cond conditions
	if filter.ClassID != "" {
		cond.add("a.class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		cond.add("a.student_id = ?", filter.StudentID)
	}
	if filter.FromDate.Valid() {
		cond.add("a.date >= ?", filter.FromDate)
	}
	if filter.ToDate.Valid() {
		cond.add("a.date <= ?", filter.ToDate)
	}

	records := []attendance.Record{}
	err := selectAll(ctx, repo.db, &records, `
		SELECT a.*, s.first_name, s.last_name
		FROM attendance a
		JOIN students s ON s.id = a.student_id`+cond.where()+`
		ORDER BY a.date DESC, s.last_name, s.first_name`, cond.args...)
	return records, trap(err, attendance.ErrNotFound, "querying attendance")
}

func (repo attendanceRepository) UpsertAttendance(ctx context.Context, rec attendance.Record) error {
	_, err := exec(ctx, repo.db, `
		INSERT INTO attendance (id, student_id, class_id, date, status, notes, marked_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, class_id, date) DO UPDATE SET
			status = excluded.status,
			notes = excluded.notes,
			marked_by = excluded.marked_by,
			updated_at = excluded.updated_at`,
		rec.ID, rec.StudentID, rec.ClassID, rec.Date, rec.Status, rec.Notes, rec.MarkedBy, rec.CreatedAt, rec.UpdatedAt)
	return trap(err, attendance.ErrNotFound, "upserting attendance")
}
