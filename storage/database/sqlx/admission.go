package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/admission"
	"github.com/trezcool/chikoro/core/profile"
)

const applicationSelect = `
	SELECT a.*, f.name AS desired_form_name, st.name AS intended_stream_name
	FROM applications a
	LEFT JOIN forms f ON f.id = a.desired_form_id
	LEFT JOIN streams st ON st.id = a.intended_stream_id`

type admissionRepository struct {
	db *sqlx.DB
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *sqlx.DB) *admissionRepository {
	return &admissionRepository{db: db}
}

func (repo admissionRepository) QueryApplications(ctx context.Context, status string, page core.Page) ([]admission.Application, error) {
	var cond conditions
	if status != "" {
		cond.add("a.status = ?", status)
	}
	query, args := paginate(applicationSelect+cond.where()+" ORDER BY a.created_at DESC", page, cond.args)

	apps := []admission.Application{}
	err := selectAll(ctx, repo.db, &apps, query, args...)
	return apps, trap(err, admission.ErrNotFound, "querying applications")
}

func (repo admissionRepository) GetApplication(ctx context.Context, id string) (admission.Application, error) {
	var app admission.Application
	err := get(ctx, repo.db, &app, applicationSelect+" WHERE a.id = ?", id)
	return app, trap(err, admission.ErrNotFound, "getting application")
}

func (repo admissionRepository) CreateApplication(ctx context.Context, app admission.Application) (admission.Application, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO applications (id, first_name, last_name, email, phone, date_of_birth, gender, address,
			desired_form_id, intended_stream_id, status, review_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.FirstName, app.LastName, app.Email, app.Phone, app.DateOfBirth, app.Gender, app.Address,
		app.DesiredFormID, app.IntendedStreamID, app.Status, app.ReviewNotes, app.CreatedAt, app.UpdatedAt)
	return app, trap(err, admission.ErrNotFound, "inserting application")
}

func (repo admissionRepository) QueryDocuments(ctx context.Context, applicationID string) ([]admission.Document, error) {
	docs := []admission.Document{}
	err := selectAll(ctx, repo.db, &docs,
		"SELECT * FROM application_documents WHERE application_id = ? ORDER BY created_at", applicationID)
	return docs, trap(err, admission.ErrNotFound, "querying documents")
}

func (repo admissionRepository) CreateDocument(ctx context.Context, doc admission.Document) (admission.Document, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO application_documents (id, application_id, document_type, file_path, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ApplicationID, doc.DocumentType, doc.FilePath, doc.FileName, doc.CreatedAt)
	return doc, trap(err, admission.ErrNotFound, "inserting document")
}

func (repo admissionRepository) ReviewApplication(ctx context.Context, app admission.Application, student *profile.Student) (admission.Application, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if student != nil {
			_, err := exec(ctx, tx, `
				INSERT INTO students (id, user_id, first_name, last_name, date_of_birth, gender, phone, enrollment_status, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				student.ID, student.UserID, student.FirstName, student.LastName, student.DateOfBirth, student.Gender,
				student.Phone, student.EnrollmentStatus, student.CreatedAt)
			if err != nil {
				return trap(err, admission.ErrNotFound, "inserting student")
			}
		}

		// only a PENDING application can be reviewed
		res, err := exec(ctx, tx, `
			UPDATE applications
			SET status = ?, review_notes = ?, reviewed_by = ?, reviewed_at = ?, student_id = ?, updated_at = ?
			WHERE id = ? AND status = ?`,
			app.Status, app.ReviewNotes, app.ReviewedBy, app.ReviewedAt, app.StudentID, app.UpdatedAt,
			app.ID, admission.StatusPending)
		if err != nil {
			return trap(err, admission.ErrNotFound, "updating application")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return admission.ErrNotReviewable
		}
		return nil
	})
	if err != nil {
		return admission.Application{}, err
	}
	return app, nil
}
