package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core/exam"
)

const examSelect = `
	SELECT e.*, sub.name AS subject_name, c.name AS class_name, t.name AS term_name
	FROM exams e
	JOIN subjects sub ON sub.id = e.subject_id
	JOIN classes c ON c.id = e.class_id
	JOIN terms t ON t.id = e.term_id`

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

func (repo examRepository) QueryExams(ctx context.Context, filter exam.ExamFilter) ([]exam.Exam, error) {
	var cond conditions
	if filter.TermID != "" {
		cond.add("e.term_id = ?", filter.TermID)
	}
	if filter.ClassID != "" {
		cond.add("e.class_id = ?", filter.ClassID)
	}
	exams := []exam.Exam{}
	err := selectAll(ctx, repo.db, &exams,
		examSelect+cond.where()+" ORDER BY e.exam_date IS NULL, e.exam_date DESC, e.created_at DESC", cond.args...)
	return exams, trap(err, exam.ErrNotFound, "querying exams")
}

func (repo examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	var e exam.Exam
	err := get(ctx, repo.db, &e, examSelect+" WHERE e.id = ?", id)
	return e, trap(err, exam.ErrNotFound, "getting exam")
}

func (repo examRepository) CreateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO exams (id, term_id, class_id, subject_id, name, exam_type, total_marks, exam_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TermID, e.ClassID, e.SubjectID, e.Name, e.ExamType, e.TotalMarks, e.ExamDate, e.CreatedAt)
	return e, trap(err, exam.ErrNotFound, "inserting exam")
}

func (repo examRepository) QueryResults(ctx context.Context, examID string) ([]exam.Result, error) {
	results := []exam.Result{}
	err := selectAll(ctx, repo.db, &results, `
		SELECT r.*, s.first_name, s.last_name
		FROM exam_results r
		JOIN students s ON s.id = r.student_id
		WHERE r.exam_id = ?
		ORDER BY s.last_name, s.first_name`, examID)
	return results, trap(err, exam.ErrNotFound, "querying results")
}

// UpsertResult clears a previous approval: changed marks must be approved again.
func (repo examRepository) UpsertResult(ctx context.Context, r exam.Result) error {
	_, err := exec(ctx, repo.db, `
		INSERT INTO exam_results (id, exam_id, student_id, marks, entered_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (exam_id, student_id) DO UPDATE SET
			marks = excluded.marks,
			entered_by = excluded.entered_by,
			approved_by = NULL,
			approved_at = NULL,
			updated_at = excluded.updated_at`,
		r.ID, r.ExamID, r.StudentID, r.Marks, r.EnteredBy, r.CreatedAt, r.UpdatedAt)
	return trap(err, exam.ErrNotFound, "upserting result")
}

func (repo examRepository) ApproveResults(ctx context.Context, examID, approverID string, at null.Time) (int64, error) {
	res, err := exec(ctx, repo.db,
		"UPDATE exam_results SET approved_by = ?, approved_at = ?, updated_at = ? WHERE exam_id = ?",
		approverID, at, at, examID)
	if err != nil {
		return 0, trap(err, exam.ErrNotFound, "approving results")
	}
	n, err := res.RowsAffected()
	return n, trap(err, exam.ErrNotFound, "counting approved results")
}

func (repo examRepository) QueryStudentResults(ctx context.Context, filter exam.StudentResultFilter) ([]exam.StudentResult, error) {
	var cond conditions
	cond.add("r.student_id = ?", filter.StudentID)
	if filter.TermID != "" {
		cond.add("e.term_id = ?", filter.TermID)
	}
	if filter.AcademicYearID != "" {
		cond.add("t.academic_year_id = ?", filter.AcademicYearID)
	}
	if filter.ApprovedOnly {
		cond.add("r.approved_at IS NOT NULL")
	}

	results := []exam.StudentResult{}
	err := selectAll(ctx, repo.db, &results, `
		SELECT r.id, r.exam_id, r.marks, r.approved_at, e.name AS exam_name, e.exam_type, e.total_marks,
			sub.name AS subject_name, t.name AS term_name
		FROM exam_results r
		JOIN exams e ON e.id = r.exam_id
		JOIN subjects sub ON sub.id = e.subject_id
		JOIN terms t ON t.id = e.term_id`+cond.where()+`
		ORDER BY t.start_date, sub.name`, cond.args...)
	return results, trap(err, exam.ErrNotFound, "querying student results")
}

func (repo examRepository) QueryClassResults(ctx context.Context, classID, termID string) ([]exam.ClassResult, error) {
	var cond conditions
	cond.add("e.class_id = ?", classID)
	if termID != "" {
		cond.add("e.term_id = ?", termID)
	}

	results := []exam.ClassResult{}
	err := selectAll(ctx, repo.db, &results, `
		SELECT r.student_id, s.first_name, s.last_name, r.marks, e.id AS exam_id, e.name AS exam_name,
			sub.name AS subject_name
		FROM exam_results r
		JOIN exams e ON e.id = r.exam_id
		JOIN students s ON s.id = r.student_id
		JOIN subjects sub ON sub.id = e.subject_id`+cond.where()+`
		ORDER BY s.last_name, s.first_name, sub.name`, cond.args...)
	return results, trap(err, exam.ErrNotFound, "querying class results")
}
