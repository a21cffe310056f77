package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Statuses
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
	StatusExcused = "EXCUSED"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

func IsValidStatus(status string) bool {
	return core.StringIn(status, Statuses...)
}

type Record struct {
	ID        string      `db:"id" json:"id"`
	StudentID string      `db:"student_id" json:"student_id"`
	ClassID   string      `db:"class_id" json:"class_id"`
	Date      core.Date   `db:"date" json:"date"`
	Status    string      `db:"status" json:"status"`
	Notes     string      `db:"notes" json:"notes"`
	MarkedBy  null.String `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"-"`

	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
}

type Filter struct {
	ClassID   string
	StudentID string
	FromDate  core.Date
	ToDate    core.Date
}

type Mark struct {
	StudentID string    `json:"student_id" validate:"required"`
	Date      core.Date `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
	Notes     string    `json:"notes"`
}

func (m *Mark) Validate(validate *validator.Validate) error {
	m.StudentID = core.CleanString(m.StudentID)
	m.Status = core.CleanString(m.Status)
	return validate.Struct(m)
}

type BulkEntry struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

type BulkMark struct {
	Date    core.Date   `json:"date" validate:"required"`
	Entries []BulkEntry `json:"entries"`
}

func (bm *BulkMark) Validate(validate *validator.Validate) error {
	return validate.Struct(bm)
}
