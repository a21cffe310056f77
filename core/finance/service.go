package finance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var ErrNotFound = errors.Wrap(core.ErrNotFound, "finance")

type (
	Repository interface {
		QueryFeeStructures(ctx context.Context, filter FeeFilter) ([]FeeStructure, error)
		CreateFeeStructure(ctx context.Context, fs FeeStructure) (FeeStructure, error)

		// QueryInvoices returns invoices newest first. A non-nil empty filter.StudentIDs matches nothing.
		QueryInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
		GetInvoice(ctx context.Context, id string) (Invoice, error)
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		QueryPayments(ctx context.Context, invoiceID string) ([]Payment, error)
		// RecordPayment stores the payment and recomputes the invoice status in one transaction.
		RecordPayment(ctx context.Context, p Payment) (Invoice, error)

		// QueryDebtors sums invoices and payments per student for the academic year, biggest balance first.
		// Students without balance are left out.
		QueryDebtors(ctx context.Context, academicYearID string) ([]Debtor, error)
		GetTotals(ctx context.Context, academicYearID string) (invoiced, paid float64, err error)
	}

	StudentAccess interface {
		CheckStudentAccess(ctx context.Context, actor user.Actor, studentID string) error
		LinkedStudentIDs(ctx context.Context, parentID string) ([]string, error)
	}

	YearResolver interface {
		ResolveAcademicYear(ctx context.Context, id string) (string, error)
	}

	Service struct {
		repo      Repository
		access    StudentAccess
		years     YearResolver
		publisher core.Publisher
		logger    core.Logger
	}

	// PaymentRecorded is published after each payment.
	PaymentRecorded struct {
		InvoiceID string  `json:"invoice_id"`
		StudentID string  `json:"student_id"`
		PaymentID string  `json:"payment_id"`
		Amount    float64 `json:"amount"`
		Status    string  `json:"status"`
	}
)

func NewService(repo Repository, access StudentAccess, years YearResolver, publisher core.Publisher, logger core.Logger) *Service {
	return &Service{repo: repo, access: access, years: years, publisher: publisher, logger: logger}
}

// FeeStructures lists the fee structures of filter.AcademicYearID (default: the current year).
func (svc *Service) FeeStructures(ctx context.Context, filter FeeFilter) ([]FeeStructure, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, filter.AcademicYearID)
	if err != nil || ayID == "" {
		return []FeeStructure{}, err
	}
	filter.AcademicYearID = ayID
	return svc.repo.QueryFeeStructures(ctx, filter)
}

func (svc *Service) CreateFeeStructure(ctx context.Context, fs FeeStructure) (FeeStructure, error) {
	fs.ID = core.NewID()
	fs.CreatedAt = core.Now()
	return svc.repo.CreateFeeStructure(ctx, fs)
}

// Invoices lists invoices visible to actor: students see their own, parents those of their linked students.
func (svc *Service) Invoices(ctx context.Context, actor user.Actor, studentID, status string) ([]Invoice, error) {
	filter := InvoiceFilter{Status: core.CleanString(status)}
	if studentID != "" {
		filter.StudentIDs = []string{studentID}
	}

	switch actor.Role {
	case user.RoleStudent:
		if actor.StudentID == "" {
			return nil, core.ErrForbidden
		}
		filter.StudentIDs = []string{actor.StudentID}
	case user.RoleParent:
		linked, err := svc.access.LinkedStudentIDs(ctx, actor.ParentID)
		if err != nil {
			return nil, errors.Wrap(err, "getting linked students")
		}
		if studentID != "" {
			if !core.StringIn(studentID, linked...) {
				return []Invoice{}, nil
			}
			linked = []string{studentID}
		}
		filter.StudentIDs = linked
	}
	return svc.repo.QueryInvoices(ctx, filter)
}

func (svc *Service) GetInvoice(ctx context.Context, actor user.Actor, id string) (InvoiceDetail, error) {
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceDetail{}, err
	}
	if err = svc.access.CheckStudentAccess(ctx, actor, inv.StudentID); err != nil {
		return InvoiceDetail{}, err
	}
	payments, err := svc.repo.QueryPayments(ctx, inv.ID)
	if err != nil {
		return InvoiceDetail{}, errors.Wrap(err, "querying payments")
	}
	return InvoiceDetail{Invoice: inv, Payments: payments}, nil
}

func (svc *Service) CreateInvoice(ctx context.Context, ni NewInvoice) (Invoice, error) {
	now := core.Now()
	inv, err := svc.repo.CreateInvoice(ctx, Invoice{
		ID:             core.NewID(),
		StudentID:      ni.StudentID,
		AcademicYearID: ni.AcademicYearID,
		TermID:         ni.TermID,
		Amount:         ni.Amount,
		Status:         StatusUnpaid,
		DueDate:        ni.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return Invoice{}, errors.Wrap(err, "creating invoice")
	}
	return svc.repo.GetInvoice(ctx, inv.ID)
}

// RecordPayment adds a payment to the invoice. The invoice becomes PAID once fully paid, PARTIAL before that.
func (svc *Service) RecordPayment(ctx context.Context, actor user.Actor, invoiceID string, np NewPayment) (Invoice, error) {
	p := Payment{
		ID:            core.NewID(),
		InvoiceID:     invoiceID,
		Amount:        np.Amount,
		PaymentDate:   np.PaymentDate,
		PaymentMethod: np.PaymentMethod,
		Reference:     np.Reference,
		RecordedBy:    null.NewString(actor.UserID, actor.UserID != ""),
		CreatedAt:     core.Now(),
	}
	inv, err := svc.repo.RecordPayment(ctx, p)
	if err != nil {
		return Invoice{}, err
	}

	evt := PaymentRecorded{InvoiceID: inv.ID, StudentID: inv.StudentID, PaymentID: p.ID, Amount: p.Amount, Status: inv.Status}
	if err = svc.publisher.Publish(ctx, core.EventPaymentRecorded, evt); err != nil {
		svc.logger.Error("finance: publishing payment", err, actor.Person())
	}
	return inv, nil
}

// PaymentStatus is the status of an invoice of amount once paid has been received.
func PaymentStatus(amount, paid float64) string {
	switch {
	case paid >= amount:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

func (svc *Service) Debtors(ctx context.Context, academicYearID string) ([]Debtor, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, academicYearID)
	if err != nil || ayID == "" {
		return []Debtor{}, err
	}
	return svc.repo.QueryDebtors(ctx, ayID)
}

func (svc *Service) Summary(ctx context.Context, academicYearID string) (Summary, error) {
	ayID, err := svc.years.ResolveAcademicYear(ctx, academicYearID)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{AcademicYearID: null.NewString(ayID, ayID != "")}
	if ayID == "" {
		return sum, nil
	}
	sum.TotalInvoiced, sum.TotalPaid, err = svc.repo.GetTotals(ctx, ayID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "getting totals")
	}
	sum.Outstanding = sum.TotalInvoiced - sum.TotalPaid
	return sum, nil
}
