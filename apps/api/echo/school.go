package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
)

type schoolApi struct {
	svc *school.Service
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service) {
	api := schoolApi{svc: svc}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.classes, requireRoles(user.StaffRoles...))
	// lookups used by every dashboard
	cg.GET("/academic-years", api.academicYears)
	cg.GET("/forms", api.forms)
	cg.GET("/terms", api.terms)
	cg.GET("/streams", api.streams)
	cg.GET("/:id", api.retrieve, requireRoles(user.StaffRoles...))

	g.GET("/subjects", api.subjects, jwt, requireRoles(plusRoles(user.StaffRoles, user.RoleStudent)...))
}

func (api *schoolApi) classes(ctx echo.Context) error {
	classes, err := api.svc.Classes(ctx.Request().Context(), school.ClassFilter{
		AcademicYearID: core.CleanString(ctx.QueryParam("academic_year_id")),
		FormID:         core.CleanString(ctx.QueryParam("form_id")),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) academicYears(ctx echo.Context) error {
	years, err := api.svc.AcademicYears(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *schoolApi) forms(ctx echo.Context) error {
	forms, err := api.svc.Forms(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, forms)
}

func (api *schoolApi) terms(ctx echo.Context) error {
	terms, err := api.svc.Terms(ctx.Request().Context(), core.CleanString(ctx.QueryParam("academic_year_id")))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *schoolApi) streams(ctx echo.Context) error {
	streams, err := api.svc.Streams(ctx.Request().Context(), core.CleanString(ctx.QueryParam("form_id")))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, streams)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	class, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *schoolApi) subjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}
