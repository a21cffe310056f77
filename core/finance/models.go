package finance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

// Invoice statuses
const (
	StatusUnpaid  = "UNPAID"
	StatusPartial = "PARTIAL"
	StatusPaid    = "PAID"
)

type FeeStructure struct {
	ID             string      `db:"id" json:"id"`
	AcademicYearID string      `db:"academic_year_id" json:"academic_year_id"`
	FormID         string      `db:"form_id" json:"form_id"`
	TermID         null.String `db:"term_id" json:"term_id"`
	Name           string      `db:"name" json:"name"`
	Amount         float64     `db:"amount" json:"amount"`
	CreatedAt      time.Time   `db:"created_at" json:"-"`

	FormName string `db:"form_name" json:"form_name,omitempty"`
}

type FeeFilter struct {
	AcademicYearID string
	FormID         string
}

type Invoice struct {
	ID             string      `db:"id" json:"id"`
	StudentID      string      `db:"student_id" json:"student_id"`
	AcademicYearID string      `db:"academic_year_id" json:"academic_year_id"`
	TermID         null.String `db:"term_id" json:"term_id"`
	Amount         float64     `db:"amount" json:"amount"`
	Status         string      `db:"status" json:"status"`
	DueDate        core.Date   `db:"due_date" json:"due_date"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"-"`

	FirstName        string      `db:"first_name" json:"first_name,omitempty"`
	LastName         string      `db:"last_name" json:"last_name,omitempty"`
	AcademicYearName string      `db:"academic_year_name" json:"academic_year_name,omitempty"`
	TermName         null.String `db:"term_name" json:"term_name,omitempty"`
}

type InvoiceDetail struct {
	Invoice
	Payments []Payment `json:"payments"`
}

type InvoiceFilter struct {
	StudentIDs []string
	Status     string
}

type NewInvoice struct {
	StudentID      string      `json:"student_id" validate:"required"`
	AcademicYearID string      `json:"academic_year_id" validate:"required"`
	TermID         null.String `json:"term_id"`
	Amount         float64     `json:"amount" validate:"gt=0"`
	DueDate        core.Date   `json:"due_date"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.StudentID = core.CleanString(ni.StudentID)
	ni.AcademicYearID = core.CleanString(ni.AcademicYearID)
	return validate.Struct(ni)
}

type Payment struct {
	ID            string      `db:"id" json:"id"`
	InvoiceID     string      `db:"invoice_id" json:"invoice_id"`
	Amount        float64     `db:"amount" json:"amount"`
	PaymentDate   core.Date   `db:"payment_date" json:"payment_date"`
	PaymentMethod string      `db:"payment_method" json:"payment_method"`
	Reference     string      `db:"reference" json:"reference"`
	RecordedBy    null.String `db:"recorded_by" json:"-"`
	CreatedAt     time.Time   `db:"created_at" json:"-"`
}

type NewPayment struct {
	Amount        float64   `json:"amount" validate:"gt=0"`
	PaymentDate   core.Date `json:"payment_date" validate:"required"`
	PaymentMethod string    `json:"payment_method"`
	Reference     string    `json:"reference"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PaymentMethod = core.CleanString(np.PaymentMethod)
	np.Reference = core.CleanString(np.Reference)
	return validate.Struct(np)
}

type Debtor struct {
	StudentID     string  `db:"student_id" json:"student_id"`
	FirstName     string  `db:"first_name" json:"first_name"`
	LastName      string  `db:"last_name" json:"last_name"`
	TotalInvoiced float64 `db:"total_invoiced" json:"total_invoiced"`
	TotalPaid     float64 `db:"total_paid" json:"total_paid"`
	Balance       float64 `db:"balance" json:"balance"`
}

type Summary struct {
	AcademicYearID null.String `json:"academic_year_id"`
	TotalInvoiced  float64     `json:"total_invoiced"`
	TotalPaid      float64     `json:"total_paid"`
	Outstanding    float64     `json:"outstanding"`
}
