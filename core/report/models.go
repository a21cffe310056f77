package report

import "github.com/trezcool/chikoro/core"

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// EnrollmentRow is the head count of one class.
type EnrollmentRow struct {
	ClassID      string `db:"class_id" json:"class_id"`
	ClassName    string `db:"class_name" json:"class_name"`
	FormName     string `db:"form_name" json:"form_name"`
	StreamName   string `db:"stream_name" json:"stream_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}

type GenderCount struct {
	Gender string `db:"gender" json:"gender"`
	Count  int    `db:"count" json:"count"`
}

// Candidate is a student sitting national examinations this year.
type Candidate struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Gender      string    `db:"gender" json:"gender"`
	DateOfBirth core.Date `db:"date_of_birth" json:"date_of_birth"`
	ClassName   string    `db:"class_name" json:"class_name"`
	FormName    string    `db:"form_name" json:"form_name"`
}

// Sheet is a tabular report ready to be exported.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}
