package coursework

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

const DefaultTotalMarks = 100

type Assignment struct {
	ID          string      `db:"id" json:"id"`
	ClassID     string      `db:"class_id" json:"class_id"`
	SubjectID   string      `db:"subject_id" json:"subject_id"`
	TermID      null.String `db:"term_id" json:"term_id"`
	CreatedBy   null.String `db:"created_by" json:"created_by"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	DueDate     core.Date   `db:"due_date" json:"due_date"`
	TotalMarks  float64     `db:"total_marks" json:"total_marks"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`

	SubjectName string `db:"subject_name" json:"subject_name,omitempty"`
	ClassName   string `db:"class_name" json:"class_name,omitempty"`
}

// StudentAssignment is an assignment of one of the student's classes, with the student's submission (if any).
type StudentAssignment struct {
	Assignment
	Marks       null.Float64 `db:"marks" json:"marks"`
	Feedback    null.String  `db:"feedback" json:"feedback"`
	SubmittedAt null.Time    `db:"submitted_at" json:"submitted_at"`
	FileName    null.String  `db:"file_name" json:"file_name"`
}

type NewAssignment struct {
	ClassID     string      `json:"class_id" validate:"required"`
	SubjectID   string      `json:"subject_id" validate:"required"`
	TermID      null.String `json:"term_id"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description"`
	DueDate     core.Date   `json:"due_date"`
	TotalMarks  *float64    `json:"total_marks" validate:"omitempty,gt=0"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	if na.TotalMarks == nil {
		marks := float64(DefaultTotalMarks)
		na.TotalMarks = &marks
	}
	return validate.Struct(na)
}

type Submission struct {
	ID           string       `db:"id" json:"id"`
	AssignmentID string       `db:"assignment_id" json:"assignment_id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	FilePath     string       `db:"file_path" json:"file_path"`
	FileName     string       `db:"file_name" json:"file_name"`
	SubmittedAt  time.Time    `db:"submitted_at" json:"submitted_at"`
	Marks        null.Float64 `db:"marks" json:"marks"`
	Feedback     null.String  `db:"feedback" json:"feedback"`
	GradedAt     null.Time    `db:"graded_at" json:"graded_at"`

	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
}

type SubmitWork struct {
	FilePath string `json:"file_path" query:"file_path" form:"file_path"`
	FileName string `json:"file_name" query:"file_name" form:"file_name"`
}

type Grade struct {
	Marks    null.Float64 `json:"marks"`
	Feedback null.String  `json:"feedback"`
}
