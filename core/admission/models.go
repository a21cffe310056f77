package admission

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Application statuses
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type Application struct {
	ID               string      `db:"id" json:"id"`
	FirstName        string      `db:"first_name" json:"first_name"`
	LastName         string      `db:"last_name" json:"last_name"`
	Email            string      `db:"email" json:"email"`
	Phone            string      `db:"phone" json:"phone"`
	DateOfBirth      core.Date   `db:"date_of_birth" json:"date_of_birth"`
	Gender           string      `db:"gender" json:"gender"`
	Address          string      `db:"address" json:"address"`
	DesiredFormID    null.String `db:"desired_form_id" json:"desired_form_id"`
	IntendedStreamID null.String `db:"intended_stream_id" json:"intended_stream_id"`
	Status           string      `db:"status" json:"status"`
	ReviewNotes      string      `db:"review_notes" json:"review_notes"`
	ReviewedBy       null.String `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt       null.Time   `db:"reviewed_at" json:"reviewed_at"`
	StudentID        null.String `db:"student_id" json:"student_id"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"-"`

	DesiredFormName    null.String `db:"desired_form_name" json:"desired_form_name"`
	IntendedStreamName null.String `db:"intended_stream_name" json:"intended_stream_name"`
}

type ApplicationDetail struct {
	Application
	Documents []Document `json:"documents"`
}

type NewApplication struct {
	FirstName        string    `json:"first_name" validate:"required,max=100"`
	LastName         string    `json:"last_name" validate:"required,max=100"`
	Email            string    `json:"email" validate:"required,email"`
	Phone            string    `json:"phone" validate:"max=30"`
	DateOfBirth      core.Date `json:"date_of_birth"`
	Gender           string    `json:"gender" validate:"max=20"`
	Address          string    `json:"address"`
	DesiredFormID    string    `json:"desired_form_id" validate:"required"`
	IntendedStreamID string    `json:"intended_stream_id" validate:"required"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Phone = core.CleanString(na.Phone)
	na.Gender = core.CleanString(na.Gender)
	na.Address = core.CleanString(na.Address)
	return validate.Struct(na)
}

type Document struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	DocumentType  string    `db:"document_type" json:"document_type"`
	FilePath      string    `db:"file_path" json:"file_path"`
	FileName      string    `db:"file_name" json:"file_name"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
}

type NewDocument struct {
	DocumentType string `query:"document_type" json:"document_type" validate:"required"`
	FilePath     string `query:"file_path" json:"file_path" validate:"required"`
	FileName     string `query:"file_name" json:"file_name"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.DocumentType = core.CleanString(nd.DocumentType)
	nd.FilePath = core.CleanString(nd.FilePath)
	nd.FileName = core.CleanString(nd.FileName)
	return validate.Struct(nd)
}

type Review struct {
	Status      string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	ReviewNotes string `json:"review_notes"`
}

func (r *Review) Validate(validate *validator.Validate) error {
	r.Status = core.CleanString(r.Status)
	r.ReviewNotes = core.CleanString(r.ReviewNotes)
	return validate.Struct(r)
}
