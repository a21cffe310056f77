package learning

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

type Material struct {
	ID          string      `db:"id" json:"id"`
	ClassID     string      `db:"class_id" json:"class_id"`
	SubjectID   string      `db:"subject_id" json:"subject_id"`
	UploadedBy  null.String `db:"uploaded_by" json:"uploaded_by"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	FilePath    string      `db:"file_path" json:"file_path"`
	FileName    string      `db:"file_name" json:"file_name"`
	IsPublished bool        `db:"is_published" json:"-"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`

	SubjectName string `db:"subject_name" json:"subject_name,omitempty"`
	ClassName   string `db:"class_name" json:"class_name,omitempty"`
}

type NewMaterial struct {
	ClassID     string `json:"class_id" validate:"required"`
	SubjectID   string `json:"subject_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

type MaterialFilter struct {
	ClassID   string
	StudentID string
}

type LibraryItem struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	FilePath    string    `db:"file_path" json:"file_path"`
	FileName    string    `db:"file_name" json:"file_name"`
	IsPublic    bool      `db:"is_public" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
