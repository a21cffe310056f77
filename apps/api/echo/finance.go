package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/finance"
	"github.com/trezcool/chikoro/core/user"
)

type financeApi struct {
	svc      *finance.Service
	validate *validator.Validate
}

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *finance.Service, validate *validator.Validate) {
	api := financeApi{svc: svc, validate: validate}
	officers := requireRoles(user.FinanceRoles...)
	payers := requireRoles(plusRoles(user.FinanceRoles, user.RoleStudent, user.RoleParent)...)

	fg := g.Group("/finance", jwt)
	fg.GET("/fee-structures", api.feeStructures, officers)
	fg.GET("/invoices", api.invoices, payers)
	fg.POST("/invoices", api.createInvoice, officers)
	fg.GET("/invoices/:id", api.invoice, payers)
	fg.POST("/invoices/:id/payments", api.recordPayment, officers)
	fg.GET("/debtors", api.debtors, officers)
	fg.GET("/summary", api.summary, officers)
}

func (api *financeApi) feeStructures(ctx echo.Context) error {
	fees, err := api.svc.FeeStructures(ctx.Request().Context(), finance.FeeFilter{
		AcademicYearID: core.CleanString(ctx.QueryParam("academic_year_id")),
		FormID:         core.CleanString(ctx.QueryParam("form_id")),
	})
	if err != nil {
		return errors.Wrap(err, "querying fee structures")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *financeApi) invoices(ctx echo.Context) error {
	invoices, err := api.svc.Invoices(
		ctx.Request().Context(),
		contextActor(ctx),
		core.CleanString(ctx.QueryParam("student_id")),
		ctx.QueryParam("status"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *financeApi) invoice(ctx echo.Context) error {
	inv, err := api.svc.GetInvoice(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *financeApi) createInvoice(ctx echo.Context) error {
	var data finance.NewInvoice
	if err := bindValid(ctx, api.validate, &data, "NewInvoice"); err != nil {
		return err
	}
	inv, err := api.svc.CreateInvoice(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *financeApi) recordPayment(ctx echo.Context) error {
	var data finance.NewPayment
	if err := bindValid(ctx, api.validate, &data, "NewPayment"); err != nil {
		return err
	}
	inv, err := api.svc.RecordPayment(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *financeApi) debtors(ctx echo.Context) error {
	debtors, err := api.svc.Debtors(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return errors.Wrap(err, "querying debtors")
	}
	return ctx.JSON(http.StatusOK, debtors)
}

func (api *financeApi) summary(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return errors.Wrap(err, "summing up finances")
	}
	return ctx.JSON(http.StatusOK, sum)
}
