package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/finance"
)

const invoiceSelect = `
	SELECT i.*, s.first_name, s.last_name, ay.name AS academic_year_name, t.name AS term_name
	FROM invoices i
	JOIN students s ON s.id = i.student_id
	JOIN academic_years ay ON ay.id = i.academic_year_id
	LEFT JOIN terms t ON t.id = i.term_id`

type financeRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *sqlx.DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo financeRepository) QueryFeeStructures(ctx context.Context, filter finance.FeeFilter) ([]finance.FeeStructure, error) {
	var cond conditions
	if filter.AcademicYearID != "" {
		cond.add("fs.academic_year_id = ?", filter.AcademicYearID)
	}
	if filter.FormID != "" {
		cond.add("fs.form_id = ?", filter.FormID)
	}
	structures := []finance.FeeStructure{}
	err := selectAll(ctx, repo.db, &structures, `
		SELECT fs.*, f.name AS form_name
		FROM fee_structures fs
		JOIN forms f ON f.id = fs.form_id`+cond.where()+`
		ORDER BY f.display_order, fs.name`, cond.args...)
	return structures, trap(err, finance.ErrNotFound, "querying fee structures")
}

func (repo financeRepository) CreateFeeStructure(ctx context.Context, fs finance.FeeStructure) (finance.FeeStructure, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO fee_structures (id, academic_year_id, form_id, term_id, name, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.AcademicYearID, fs.FormID, fs.TermID, fs.Name, fs.Amount, fs.CreatedAt)
	return fs, trap(err, finance.ErrNotFound, "inserting fee structure")
}

func (repo financeRepository) QueryInvoices(ctx context.Context, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	invoices := []finance.Invoice{}
	if filter.StudentIDs != nil && len(filter.StudentIDs) == 0 {
		return invoices, nil
	}

	var cond conditions
	if len(filter.StudentIDs) > 0 {
		cond.add("i.student_id IN (?)", filter.StudentIDs)
	}
	if filter.Status != "" {
		cond.add("i.status = ?", filter.Status)
	}
	err := selectIn(ctx, repo.db, &invoices, invoiceSelect+cond.where()+" ORDER BY i.created_at DESC", cond.args...)
	return invoices, trap(err, finance.ErrNotFound, "querying invoices")
}

func (repo financeRepository) getInvoice(ctx context.Context, q sqlx.ExtContext, id string) (finance.Invoice, error) {
	var inv finance.Invoice
	err := get(ctx, q, &inv, invoiceSelect+" WHERE i.id = ?", id)
	return inv, trap(err, finance.ErrNotFound, "getting invoice")
}

func (repo financeRepository) GetInvoice(ctx context.Context, id string) (finance.Invoice, error) {
	return repo.getInvoice(ctx, repo.db, id)
}

func (repo financeRepository) CreateInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO invoices (id, student_id, academic_year_id, term_id, amount, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.StudentID, inv.AcademicYearID, inv.TermID, inv.Amount, inv.Status, inv.DueDate, inv.CreatedAt, inv.UpdatedAt)
	return inv, trap(err, finance.ErrNotFound, "inserting invoice")
}

func (repo financeRepository) QueryPayments(ctx context.Context, invoiceID string) ([]finance.Payment, error) {
	payments := []finance.Payment{}
	err := selectAll(ctx, repo.db, &payments,
		"SELECT * FROM payments WHERE invoice_id = ? ORDER BY payment_date DESC, created_at DESC", invoiceID)
	return payments, trap(err, finance.ErrNotFound, "querying payments")
}

func (repo financeRepository) RecordPayment(ctx context.Context, p finance.Payment) (finance.Invoice, error) {
	var inv finance.Invoice
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// touching the invoice first locks its row until commit, so concurrent payments sum one after the other
		res, err := exec(ctx, tx, "UPDATE invoices SET updated_at = ? WHERE id = ?", core.Now(), p.InvoiceID)
		if err != nil {
			return trap(err, finance.ErrNotFound, "locking invoice")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return finance.ErrNotFound
		}
		if inv, err = repo.getInvoice(ctx, tx, p.InvoiceID); err != nil {
			return err
		}

		_, err = exec(ctx, tx, `
			INSERT INTO payments (id, invoice_id, amount, payment_date, payment_method, reference, recorded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.InvoiceID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Reference, p.RecordedBy, p.CreatedAt)
		if err != nil {
			return trap(err, finance.ErrNotFound, "inserting payment")
		}

		var paid float64
		if err = get(ctx, tx, &paid, "SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?", inv.ID); err != nil {
			return trap(err, finance.ErrNotFound, "summing payments")
		}
		inv.Status = finance.PaymentStatus(inv.Amount, paid)
		inv.UpdatedAt = core.Now()
		_, err = exec(ctx, tx, "UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?", inv.Status, inv.UpdatedAt, inv.ID)
		return trap(err, finance.ErrNotFound, "updating invoice status")
	})
	if err != nil {
		return finance.Invoice{}, err
	}
	return inv, nil
}

// QueryDebtors sums the payments of each invoice before summing per student.
func (repo financeRepository) QueryDebtors(ctx context.Context, academicYearID string) ([]finance.Debtor, error) {
	debtors := []finance.Debtor{}
	err := selectAll(ctx, repo.db, &debtors, `
		SELECT s.id AS student_id, s.first_name, s.last_name,
			SUM(i.amount) AS total_invoiced,
			SUM(COALESCE(p.paid, 0)) AS total_paid,
			SUM(i.amount) - SUM(COALESCE(p.paid, 0)) AS balance
		FROM invoices i
		JOIN students s ON s.id = i.student_id
		LEFT JOIN (SELECT invoice_id, SUM(amount) AS paid FROM payments GROUP BY invoice_id) p ON p.invoice_id = i.id
		WHERE i.academic_year_id = ?
		GROUP BY s.id, s.first_name, s.last_name
		HAVING SUM(i.amount) - SUM(COALESCE(p.paid, 0)) > 0
		ORDER BY balance DESC, s.last_name, s.first_name`, academicYearID)
	return debtors, trap(err, finance.ErrNotFound, "querying debtors")
}

func (repo financeRepository) GetTotals(ctx context.Context, academicYearID string) (invoiced, paid float64, err error) {
	var totals struct {
		Invoiced float64 `db:"invoiced"`
		Paid     float64 `db:"paid"`
	}
	err = get(ctx, repo.db, &totals, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE academic_year_id = ?) AS invoiced,
			(SELECT COALESCE(SUM(p.amount), 0) FROM payments p
				JOIN invoices i ON i.id = p.invoice_id WHERE i.academic_year_id = ?) AS paid`,
		academicYearID, academicYearID)
	return totals.Invoiced, totals.Paid, trap(err, finance.ErrNotFound, "getting totals")
}
