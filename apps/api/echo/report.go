package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/report"
	"github.com/trezcool/chikoro/core/user"
)

var exportContentTypes = map[string]string{
	report.FormatCSV:  "text/csv; charset=utf-8",
	report.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt, requireRoles(user.AdminRoles...))
	rg.GET("/enrollment", api.enrollment)
	rg.GET("/gender-distribution", api.genderDistribution)
	rg.GET("/zimsec-candidates", api.zimsecCandidates)
}

func (api *reportApi) enrollment(ctx echo.Context) error {
	format := core.CleanString(ctx.QueryParam("format"), true /* lower */)
	if format == "" {
		format = report.FormatJSON
	}
	if _, ok := exportContentTypes[format]; !ok && format != report.FormatJSON {
		return core.NewFieldError("format", report.ErrUnknownFormat.Error())
	}

	rows, err := api.svc.Enrollment(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return errors.Wrap(err, "querying enrollment")
	}
	if format == report.FormatJSON {
		return ctx.JSON(http.StatusOK, rows)
	}
	return api.attachment(ctx, report.EnrollmentSheet(rows), "enrollment", format)
}

// attachment sends sheet as a "<name>.<format>" download.
func (api *reportApi) attachment(ctx echo.Context, sheet report.Sheet, name, format string) error {
	var buf bytes.Buffer
	if err := api.svc.Export(&buf, sheet, format); err != nil {
		return errors.Wrapf(err, "exporting %s", name)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.%s", name, format))
	return ctx.Blob(http.StatusOK, exportContentTypes[format], buf.Bytes())
}

func (api *reportApi) genderDistribution(ctx echo.Context) error {
	counts, err := api.svc.GenderDistribution(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return errors.Wrap(err, "querying gender distribution")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *reportApi) zimsecCandidates(ctx echo.Context) error {
	candidates, err := api.svc.ZimsecCandidates(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return errors.Wrap(err, "querying candidates")
	}
	return ctx.JSON(http.StatusOK, candidates)
}
