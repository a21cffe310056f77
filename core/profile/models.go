package profile

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Enrollment statuses
const (
	StatusActive    = "ACTIVE"
	StatusGraduated = "GRADUATED"
	StatusWithdrawn = "WITHDRAWN"
)

type Student struct {
	ID               string      `db:"id" json:"id"`
	UserID           null.String `db:"user_id" json:"user_id"`
	FirstName        string      `db:"first_name" json:"first_name"`
	LastName         string      `db:"last_name" json:"last_name"`
	DateOfBirth      core.Date   `db:"date_of_birth" json:"date_of_birth"`
	Gender           string      `db:"gender" json:"gender"`
	Phone            string      `db:"phone" json:"phone"`
	EnrollmentStatus string      `db:"enrollment_status" json:"enrollment_status"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}

// Placement is the class a student sits in for an academic year.
type Placement struct {
	ClassID    string `db:"class_id" json:"class_id,omitempty"`
	ClassName  string `db:"class_name" json:"class_name,omitempty"`
	FormName   string `db:"form_name" json:"form_name,omitempty"`
	StreamName string `db:"stream_name" json:"stream_name,omitempty"`
}

// PlacedStudent is a Student listed together with its class.
type PlacedStudent struct {
	Student
	Placement
}

type NewStudent struct {
	UserID      null.String
	FirstName   string
	LastName    string
	DateOfBirth core.Date
	Gender      string
	Phone       string
}

type StudentFilter struct {
	ClassID        string
	FormID         string
	AcademicYearID string
}

type Teacher struct {
	ID             string      `db:"id" json:"id"`
	UserID         null.String `db:"user_id" json:"user_id"`
	FirstName      string      `db:"first_name" json:"first_name"`
	LastName       string      `db:"last_name" json:"last_name"`
	Title          string      `db:"title" json:"title"`
	Phone          string      `db:"phone" json:"phone"`
	EmployeeNumber string      `db:"employee_number" json:"employee_number"`
	CreatedAt      time.Time   `db:"created_at" json:"-"`
}

// TeacherClass is a class + subject a teacher is assigned to.
type TeacherClass struct {
	ClassID     string `db:"class_id" json:"class_id"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

type TeacherDetail struct {
	Teacher
	Classes []TeacherClass `json:"classes"`
}

type Parent struct {
	ID        string      `db:"id" json:"id"`
	UserID    null.String `db:"user_id" json:"user_id"`
	FirstName string      `db:"first_name" json:"first_name"`
	LastName  string      `db:"last_name" json:"last_name"`
	Phone     string      `db:"phone" json:"phone"`
	CreatedAt time.Time   `db:"created_at" json:"-"`
}

// LinkedStudent is a student as seen from one of their parents.
type LinkedStudent struct {
	ID           string `db:"id" json:"id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	Gender       string `db:"gender" json:"gender"`
	Relationship string `db:"relationship" json:"relationship"`
}

type ParentDetail struct {
	Parent
	Students []LinkedStudent `json:"students"`
}
