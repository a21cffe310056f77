package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core/coursework"
)

const assignmentSelect = `
	SELECT a.id, a.class_id, a.subject_id, a.term_id, a.created_by, a.title, a.description, a.due_date,
		a.total_marks, a.created_at, sub.name AS subject_name, c.name AS class_name
	FROM assignments a
	JOIN subjects sub ON sub.id = a.subject_id
	JOIN classes c ON c.id = a.class_id`

type courseworkRepository struct {
	db *sqlx.DB
}

var _ coursework.Repository = (*courseworkRepository)(nil) // interface compliance check

func NewCourseworkRepository(db *sqlx.DB) *courseworkRepository {
	return &courseworkRepository{db: db}
}

func (repo courseworkRepository) QueryAssignments(ctx context.Context, classID string) ([]coursework.Assignment, error) {
	var cond conditions
	if classID != "" {
		cond.add("a.class_id = ?", classID)
	}
	assignments := []coursework.Assignment{}
	err := selectAll(ctx, repo.db, &assignments,
		assignmentSelect+cond.where()+" ORDER BY a.created_at DESC", cond.args...)
	return assignments, trap(err, coursework.ErrNotFound, "querying assignments")
}

func (repo courseworkRepository) QueryStudentAssignments(ctx context.Context, studentID string) ([]coursework.StudentAssignment, error) {
	assignments := []coursework.StudentAssignment{}
	err := selectAll(ctx, repo.db, &assignments, `
		SELECT a.id, a.class_id, a.subject_id, a.term_id, a.created_by, a.title, a.description, a.due_date,
			a.total_marks, a.created_at, sub.name AS subject_name, c.name AS class_name,
			s.marks, s.feedback, s.submitted_at, s.file_name
		FROM assignments a
		JOIN subjects sub ON sub.id = a.subject_id
		JOIN classes c ON c.id = a.class_id
		LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = ?
		WHERE a.class_id IN (SELECT class_id FROM student_classes WHERE student_id = ?)
		ORDER BY a.due_date IS NULL, a.due_date DESC, a.created_at DESC`, studentID, studentID)
	return assignments, trap(err, coursework.ErrNotFound, "querying student assignments")
}

func (repo courseworkRepository) GetAssignment(ctx context.Context, id string) (coursework.Assignment, error) {
	var a coursework.Assignment
	err := get(ctx, repo.db, &a, assignmentSelect+" WHERE a.id = ?", id)
	return a, trap(err, coursework.ErrNotFound, "getting assignment")
}

func (repo courseworkRepository) CreateAssignment(ctx context.Context, a coursework.Assignment) (coursework.Assignment, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO assignments (id, class_id, subject_id, term_id, created_by, title, description, due_date, total_marks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClassID, a.SubjectID, a.TermID, a.CreatedBy, a.Title, a.Description, a.DueDate, a.TotalMarks, a.CreatedAt)
	return a, trap(err, coursework.ErrNotFound, "inserting assignment")
}

func (repo courseworkRepository) QuerySubmissions(ctx context.Context, assignmentID string) ([]coursework.Submission, error) {
	subs := []coursework.Submission{}
	err := selectAll(ctx, repo.db, &subs, `
		SELECT sub.*, s.first_name, s.last_name
		FROM assignment_submissions sub
		JOIN students s ON s.id = sub.student_id
		WHERE sub.assignment_id = ?
		ORDER BY s.last_name, s.first_name`, assignmentID)
	return subs, trap(err, coursework.ErrNotFound, "querying submissions")
}

func (repo courseworkRepository) GetSubmission(ctx context.Context, id string) (coursework.Submission, error) {
	var sub coursework.Submission
	err := get(ctx, repo.db, &sub, "SELECT * FROM assignment_submissions WHERE id = ?", id)
	return sub, trap(err, coursework.ErrSubmissionNotFound, "getting submission")
}

func (repo courseworkRepository) UpsertSubmission(ctx context.Context, sub coursework.Submission) (coursework.Submission, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO assignment_submissions (id, assignment_id, student_id, file_path, file_name, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			file_path = excluded.file_path,
			file_name = excluded.file_name,
			submitted_at = excluded.submitted_at`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.FilePath, sub.FileName, sub.SubmittedAt)
	if err != nil {
		return coursework.Submission{}, trap(err, coursework.ErrSubmissionNotFound, "upserting submission")
	}

	var saved coursework.Submission
	err = get(ctx, repo.db, &saved,
		"SELECT * FROM assignment_submissions WHERE assignment_id = ? AND student_id = ?", sub.AssignmentID, sub.StudentID)
	return saved, trap(err, coursework.ErrSubmissionNotFound, "getting submission")
}

func (repo courseworkRepository) GradeSubmission(ctx context.Context, sub coursework.Submission) (coursework.Submission, error) {
	res, err := exec(ctx, repo.db,
		"UPDATE assignment_submissions SET marks = ?, feedback = ?, graded_at = ? WHERE id = ?",
		sub.Marks, sub.Feedback, sub.GradedAt, sub.ID)
	if err != nil {
		return coursework.Submission{}, trap(err, coursework.ErrSubmissionNotFound, "grading submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coursework.Submission{}, coursework.ErrSubmissionNotFound
	}
	return sub, nil
}
