package tests

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/finance"
	"github.com/trezcool/chikoro/core/user"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
	testutil "github.com/trezcool/chikoro/tests"
)

func Test_financeApi_feeStructures(t *testing.T) {
	e := setup(t)
	s := e.school

	repo := sqlxrepos.NewFinanceRepository(e.db)
	fee := func(form string, name string, amount float64) finance.FeeStructure {
		fs, err := repo.CreateFeeStructure(context.Background(), finance.FeeStructure{
			ID: core.NewID(), AcademicYearID: s.Year.ID, FormID: form, Name: name, Amount: amount, CreatedAt: core.Now(),
		})
		require.NoError(t, err)
		return fs
	}
	tuition4 := fee(s.Form4.ID, "Tuition", 450)
	levy1 := fee(s.Form1.ID, "Levy", 50)
	tuition1 := fee(s.Form1.ID, "Tuition", 400)

	_, bursarToken := e.newUser(t, "bursar@test.zw", user.RoleFinanceOfficer)
	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantIDs  []string
	}{
		{name: "Auth required", path: "/api/finance/fee-structures", wantCode: http.StatusUnauthorized},
		{name: "Finance required", path: "/api/finance/fee-structures", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "current year", path: "/api/finance/fee-structures", token: bursarToken, wantIDs: []string{levy1.ID, tuition1.ID, tuition4.ID}},
		{name: "of a form", path: "/api/finance/fee-structures?form_id=" + s.Form4.ID, token: bursarToken, wantIDs: []string{tuition4.ID}},
		{name: "another year", path: "/api/finance/fee-structures?academic_year_id=nope", token: bursarToken, wantIDs: []string{}},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, ids(t, rec))
			}
		})
	}
}

func Test_financeApi_invoices(t *testing.T) {
	e := setup(t)
	s := e.school

	_, bursarToken := e.newUser(t, "bursar@test.zw", user.RoleFinanceOfficer)
	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)

	rudoUsr := testutil.CreateUser(t, e.db, "rudo@test.zw", user.RoleStudent, true)
	rudo := testutil.CreateStudent(t, e.db, rudoUsr.ID, "Rudo", "Chikore", "F", s.Class1)
	rudoToken := e.getToken(t, rudoUsr)
	tino := testutil.CreateStudent(t, e.db, "", "Tino", "Dube", "M", s.Class1)
	chipo := testutil.CreateStudent(t, e.db, "", "Chipo", "Banda", "F", s.Class4)

	parUsr := testutil.CreateUser(t, e.db, "parent@test.zw", user.RoleParent, true)
	testutil.CreateParent(t, e.db, parUsr.ID, "Mai", "Dube", tino, chipo)
	parToken := e.getToken(t, parUsr)

	newInvoice := func(studentID string, amount string) []byte {
		return []byte(`{"student_id": "` + studentID + `", "academic_year_id": "` + s.Year.ID + `", "term_id": "` + s.Term.ID +
			`", "amount": ` + amount + `, "due_date": "2024-02-15"}`)
	}
	reqMsg := "this field is required"

	runTests(t, e, []httpTest{
		{name: "create: finance required", method: http.MethodPost, path: "/api/finance/invoices", token: teacherToken, body: newInvoice(rudo.ID, "100"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "create: students cannot", method: http.MethodPost, path: "/api/finance/invoices", token: rudoToken, body: newInvoice(rudo.ID, "100"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "create: required fields", method: http.MethodPost, path: "/api/finance/invoices", token: bursarToken, body: []byte(`{"amount": 10}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: reqMsg, Fields: map[string]string{"academic_year_id": reqMsg, "student_id": reqMsg}}),
		},
		{name: "create: positive amount", method: http.MethodPost, path: "/api/finance/invoices", token: bursarToken, body: newInvoice(rudo.ID, "0"), wantCode: http.StatusBadRequest},
		{name: "unknown invoice", method: http.MethodGet, path: "/api/finance/invoices/nope", token: bursarToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
	})

	create := func(t *testing.T, body []byte) finance.Invoice {
		rec := e.do(http.MethodPost, "/api/finance/invoices", bursarToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var inv finance.Invoice
		unmarshal(t, rec, &inv)
		return inv
	}
	rudoInv := create(t, newInvoice(rudo.ID, "400"))
	assert.Equal(t, finance.StatusUnpaid, rudoInv.Status)
	assert.Equal(t, "Rudo", rudoInv.FirstName)
	assert.Equal(t, s.Year.Name, rudoInv.AcademicYearName)
	assert.Equal(t, null.StringFrom(s.Term.Name), rudoInv.TermName)
	tinoInv := create(t, newInvoice(tino.ID, "300"))
	chipoInv := create(t, newInvoice(chipo.ID, "450"))

	paymentsPath := "/api/finance/invoices/" + rudoInv.ID + "/payments"
	payment := func(amount string) []byte {
		return []byte(`{"amount": ` + amount + `, "payment_date": "2024-02-10", "payment_method": " ecocash ", "reference": "EC123"}`)
	}
	runTests(t, e, []httpTest{
		{name: "pay: finance required", method: http.MethodPost, path: paymentsPath, token: parToken, body: payment("100"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "pay: date required", method: http.MethodPost, path: paymentsPath, token: bursarToken, body: []byte(`{"amount": 100}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: reqMsg, Fields: map[string]string{"payment_date": reqMsg}}),
		},
		{name: "pay: unknown invoice", method: http.MethodPost, path: "/api/finance/invoices/nope/payments", token: bursarToken, body: payment("100"), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
	})

	pay := func(t *testing.T, path, amount, wantStatus string) {
		rec := e.do(http.MethodPost, path, bursarToken, payment(amount))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var inv finance.Invoice
		unmarshal(t, rec, &inv)
		assert.Equal(t, wantStatus, inv.Status)
	}
	t.Run("partial payment", func(t *testing.T) { pay(t, paymentsPath, "150", finance.StatusPartial) })
	t.Run("full payment", func(t *testing.T) { pay(t, paymentsPath, "250", finance.StatusPaid) })
	t.Run("tino pays a little", func(t *testing.T) { pay(t, "/api/finance/invoices/"+tinoInv.ID+"/payments", "100", finance.StatusPartial) })

	t.Run("payments are published", func(t *testing.T) {
		events := e.events.Events(core.EventPaymentRecorded)
		require.Len(t, events, 3)
		evt, ok := events[1].Payload.(finance.PaymentRecorded)
		require.True(t, ok)
		assert.Equal(t, rudoInv.ID, evt.InvoiceID)
		assert.Equal(t, rudo.ID, evt.StudentID)
		assert.Equal(t, 250.0, evt.Amount)
		assert.Equal(t, finance.StatusPaid, evt.Status)
		assert.NotEmpty(t, evt.PaymentID)
	})

	t.Run("invoice detail", func(t *testing.T) {
		for _, token := range []string{bursarToken, rudoToken} {
			rec := e.do(http.MethodGet, "/api/finance/invoices/"+rudoInv.ID, token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var inv finance.InvoiceDetail
			unmarshal(t, rec, &inv)
			assert.Equal(t, finance.StatusPaid, inv.Status)
			require.Len(t, inv.Payments, 2)
			assert.Equal(t, 250.0, inv.Payments[0].Amount)
			assert.Equal(t, "ecocash", inv.Payments[0].PaymentMethod)
			assert.Equal(t, "EC123", inv.Payments[0].Reference)
		}
		rec := e.do(http.MethodGet, "/api/finance/invoices/"+rudoInv.ID, parToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	tests := []struct {
		name    string
		path    string
		token   string
		wantIDs []string
	}{
		{name: "all (newest first)", path: "/api/finance/invoices", token: bursarToken, wantIDs: []string{chipoInv.ID, tinoInv.ID, rudoInv.ID}},
		{name: "by student", path: "/api/finance/invoices?student_id=" + tino.ID, token: bursarToken, wantIDs: []string{tinoInv.ID}},
		{name: "by status", path: "/api/finance/invoices?status=PARTIAL", token: bursarToken, wantIDs: []string{tinoInv.ID}},
		{name: "student sees their own", path: "/api/finance/invoices", token: rudoToken, wantIDs: []string{rudoInv.ID}},
		{name: "student cannot peek", path: "/api/finance/invoices?student_id=" + tino.ID, token: rudoToken, wantIDs: []string{rudoInv.ID}},
		{name: "parent sees linked students", path: "/api/finance/invoices", token: parToken, wantIDs: []string{chipoInv.ID, tinoInv.ID}},
		{name: "parent by student", path: "/api/finance/invoices?student_id=" + chipo.ID, token: parToken, wantIDs: []string{chipoInv.ID}},
		{name: "parent, unlinked student", path: "/api/finance/invoices?student_id=" + rudo.ID, token: parToken, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantIDs, ids(t, rec))
		})
	}

	t.Run("debtors (biggest balance first)", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/finance/debtors", bursarToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var debtors []finance.Debtor
		unmarshal(t, rec, &debtors)
		assert.Equal(t, []finance.Debtor{
			{StudentID: chipo.ID, FirstName: "Chipo", LastName: "Banda", TotalInvoiced: 450, TotalPaid: 0, Balance: 450},
			{StudentID: tino.ID, FirstName: "Tino", LastName: "Dube", TotalInvoiced: 300, TotalPaid: 100, Balance: 200},
		}, debtors)
	})

	t.Run("summary", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/finance/summary?academic_year_id="+s.Year.ID, bursarToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sum finance.Summary
		unmarshal(t, rec, &sum)
		assert.Equal(t, finance.Summary{
			AcademicYearID: null.StringFrom(s.Year.ID), TotalInvoiced: 1150, TotalPaid: 500, Outstanding: 650,
		}, sum)
	})

	t.Run("debtors: finance required", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/finance/debtors", parToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_financeApi_concurrentPayments(t *testing.T) {
	e := setup(t)
	s := e.school

	_, bursarToken := e.newUser(t, "bursar@test.zw", user.RoleFinanceOfficer)
	rudo := testutil.CreateStudent(t, e.db, "", "Rudo", "Chikore", "F", s.Class1)

	rec := e.do(http.MethodPost, "/api/finance/invoices", bursarToken, []byte(`{"student_id": "`+rudo.ID+
		`", "academic_year_id": "`+s.Year.ID+`", "amount": 100, "due_date": "2024-02-15"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv finance.Invoice
	unmarshal(t, rec, &inv)

	const payments = 8
	var wg sync.WaitGroup
	for i := 0; i < payments; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := e.do(http.MethodPost, "/api/finance/invoices/"+inv.ID+"/payments", bursarToken,
				[]byte(`{"amount": 12.5, "payment_date": "2024-02-10", "payment_method": "cash"}`))
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}()
	}
	wg.Wait()

	rec = e.do(http.MethodGet, "/api/finance/invoices/"+inv.ID, bursarToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail finance.InvoiceDetail
	unmarshal(t, rec, &detail)
	assert.Len(t, detail.Payments, payments)
	assert.Equal(t, finance.StatusPaid, detail.Status)

	var statuses []string
	for _, evt := range e.events.Events(core.EventPaymentRecorded) {
		statuses = append(statuses, evt.Payload.(finance.PaymentRecorded).Status)
	}
	require.Len(t, statuses, payments)
	assert.Equal(t, payments-1, countOf(statuses, finance.StatusPartial), "every payment sees the ones before it")
	assert.Equal(t, 1, countOf(statuses, finance.StatusPaid))
}

func countOf(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}
