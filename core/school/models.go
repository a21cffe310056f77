package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chikoro/core"
)

type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate core.Date `db:"start_date" json:"start_date"`
	EndDate   core.Date `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

type Term struct {
	ID             string    `db:"id" json:"id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Name           string    `db:"name" json:"name"`
	TermNumber     int       `db:"term_number" json:"term_number"`
	StartDate      core.Date `db:"start_date" json:"start_date"`
	EndDate        core.Date `db:"end_date" json:"end_date"`
}

// Form is a grade level: Form 1 to Form 4 (O-Level), Form 5 and Form 6 (A-Level).
type Form struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Level        int    `db:"level" json:"level"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

type Stream struct {
	ID     string `db:"id" json:"id"`
	FormID string `db:"form_id" json:"form_id"`
	Name   string `db:"name" json:"name"`
}

// Class is a stream of a form for one academic year, e.g. "Form 4 Blue" in 2024.
type Class struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	FormID         string    `db:"form_id" json:"form_id"`
	StreamID       string    `db:"stream_id" json:"stream_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"-"`

	FormName         string `db:"form_name" json:"form_name"`
	StreamName       string `db:"stream_name" json:"stream_name"`
	AcademicYearName string `db:"academic_year_name" json:"academic_year_name,omitempty"`
}

type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Settings are the institution settings shown on the public site (school name, motto, contacts...).
type Settings map[string]string

type NewsItem struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	EventDate   core.Date `db:"event_date" json:"event_date"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type NewNewsItem struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Content     string    `json:"content"`
	EventDate   core.Date `json:"event_date"`
	IsPublished bool      `json:"is_published"`
}

func (nn *NewNewsItem) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}

type ClassFilter struct {
	AcademicYearID string
	FormID         string
}
