package exam

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Exam types
const (
	TypeContinuous = "CONTINUOUS"
	TypeTest       = "TEST"
	TypeTerm       = "TERM"
	TypeFinal      = "FINAL"
	TypeZimsec     = "ZIMSEC"
)

var Types = []string{TypeContinuous, TypeTest, TypeTerm, TypeFinal, TypeZimsec}

type Exam struct {
	ID         string    `db:"id" json:"id"`
	TermID     string    `db:"term_id" json:"term_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	Name       string    `db:"name" json:"name"`
	ExamType   string    `db:"exam_type" json:"exam_type"`
	TotalMarks float64   `db:"total_marks" json:"total_marks"`
	ExamDate   core.Date `db:"exam_date" json:"exam_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	SubjectName string `db:"subject_name" json:"subject_name,omitempty"`
	ClassName   string `db:"class_name" json:"class_name,omitempty"`
	TermName    string `db:"term_name" json:"term_name,omitempty"`
}

type NewExam struct {
	TermID     string    `json:"term_id" validate:"required"`
	ClassID    string    `json:"class_id" validate:"required"`
	SubjectID  string    `json:"subject_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=200"`
	ExamType   string    `json:"exam_type" validate:"required,oneof=CONTINUOUS TEST TERM FINAL ZIMSEC"`
	TotalMarks *float64  `json:"total_marks" validate:"omitempty,gt=0"`
	ExamDate   core.Date `json:"exam_date"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.ExamType = core.CleanString(ne.ExamType)
	if ne.TotalMarks == nil {
		marks := float64(100)
		ne.TotalMarks = &marks
	}
	return validate.Struct(ne)
}

type ExamFilter struct {
	TermID  string
	ClassID string
}

type Result struct {
	ID         string      `db:"id" json:"id"`
	ExamID     string      `db:"exam_id" json:"exam_id"`
	StudentID  string      `db:"student_id" json:"student_id"`
	Marks      float64     `db:"marks" json:"marks"`
	EnteredBy  null.String `db:"entered_by" json:"-"`
	ApprovedBy null.String `db:"approved_by" json:"-"`
	ApprovedAt null.Time   `db:"approved_at" json:"approved_at"`
	CreatedAt  time.Time   `db:"created_at" json:"-"`
	UpdatedAt  time.Time   `db:"updated_at" json:"-"`

	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
}

type NewResult struct {
	StudentID string   `json:"student_id" validate:"required"`
	Marks     *float64 `json:"marks" validate:"required"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	return validate.Struct(nr)
}

// StudentResult is a result on a student's report.
type StudentResult struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	Marks       float64   `db:"marks" json:"marks"`
	ApprovedAt  null.Time `db:"approved_at" json:"approved_at"`
	ExamName    string    `db:"exam_name" json:"exam_name"`
	ExamType    string    `db:"exam_type" json:"exam_type"`
	TotalMarks  float64   `db:"total_marks" json:"total_marks"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	TermName    string    `db:"term_name" json:"term_name"`
}

type StudentResultFilter struct {
	StudentID      string
	TermID         string
	AcademicYearID string
	ApprovedOnly   bool
}

// ClassResult is a result on a class mark sheet.
type ClassResult struct {
	StudentID   string  `db:"student_id" json:"student_id"`
	FirstName   string  `db:"first_name" json:"first_name"`
	LastName    string  `db:"last_name" json:"last_name"`
	Marks       float64 `db:"marks" json:"marks"`
	ExamID      string  `db:"exam_id" json:"exam_id"`
	ExamName    string  `db:"exam_name" json:"exam_name"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
}
