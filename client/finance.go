package client

import (
	"context"

	"github.com/trezcool/chikoro/core/finance"
)

type FinanceAPI struct{ c *Client }

func (api FinanceAPI) FeeStructures(ctx context.Context, filter finance.FeeFilter) ([]finance.FeeStructure, error) {
	var fees []finance.FeeStructure
	q := params("academic_year_id", filter.AcademicYearID, "form_id", filter.FormID)
	err := api.c.get(ctx, "/finance/fee-structures", q, &fees)
	return fees, err
}

// Invoices lists the invoices the caller may see, optionally of one student and/or with one status.
func (api FinanceAPI) Invoices(ctx context.Context, studentID, status string) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	err := api.c.get(ctx, "/finance/invoices", params("student_id", studentID, "status", status), &invoices)
	return invoices, err
}

func (api FinanceAPI) Invoice(ctx context.Context, id string) (finance.InvoiceDetail, error) {
	var inv finance.InvoiceDetail
	err := api.c.get(ctx, pathID("/finance/invoices", id), nil, &inv)
	return inv, err
}

func (api FinanceAPI) CreateInvoice(ctx context.Context, ni finance.NewInvoice) (finance.Invoice, error) {
	var inv finance.Invoice
	err := api.c.post(ctx, "/finance/invoices", ni, &inv)
	return inv, err
}

// RecordPayment returns the invoice with its new paid amount and status.
func (api FinanceAPI) RecordPayment(ctx context.Context, invoiceID string, np finance.NewPayment) (finance.Invoice, error) {
	var inv finance.Invoice
	err := api.c.post(ctx, pathID("/finance/invoices", invoiceID, "/payments"), np, &inv)
	return inv, err
}

func (api FinanceAPI) Debtors(ctx context.Context, academicYearID string) ([]finance.Debtor, error) {
	var debtors []finance.Debtor
	err := api.c.get(ctx, "/finance/debtors", params("academic_year_id", academicYearID), &debtors)
	return debtors, err
}

func (api FinanceAPI) Summary(ctx context.Context, academicYearID string) (finance.Summary, error) {
	var sum finance.Summary
	err := api.c.get(ctx, "/finance/summary", params("academic_year_id", academicYearID), &sum)
	return sum, err
}
