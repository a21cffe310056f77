package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/exam"
	"github.com/trezcool/chikoro/core/user"
)

type examApi struct {
	svc      *exam.Service
	validate *validator.Validate
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service, validate *validator.Validate) {
	api := examApi{svc: svc, validate: validate}
	staff := requireRoles(user.StaffRoles...)

	eg := g.Group("/exams", jwt)
	eg.GET("", api.query, staff)
	eg.POST("", api.create, staff)
	eg.GET("/:id", api.retrieve, staff)
	eg.GET("/:id/results", api.results, staff)
	eg.POST("/:id/results", api.enterResult, staff)
	eg.POST("/:id/results/approve", api.approve, requireRoles(user.AdminRoles...))

	rg := g.Group("/results", jwt)
	rg.GET("/student/:id", api.studentResults, requireRoles(plusRoles(user.StaffRoles, user.RoleStudent, user.RoleParent)...))
	rg.GET("/class/:id", api.classResults, staff)
}

func (api *examApi) query(ctx echo.Context) error {
	exams, err := api.svc.Exams(ctx.Request().Context(), exam.ExamFilter{
		TermID:  core.CleanString(ctx.QueryParam("term_id")),
		ClassID: core.CleanString(ctx.QueryParam("class_id")),
	})
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := bindValid(ctx, api.validate, &data, "NewExam"); err != nil {
		return err
	}
	e, err := api.svc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.GetExam(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) results(ctx echo.Context) error {
	results, err := api.svc.Results(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *examApi) enterResult(ctx echo.Context) error {
	var data exam.NewResult
	if err := bindValid(ctx, api.validate, &data, "NewResult"); err != nil {
		return err
	}
	if err := api.svc.EnterResult(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okBody)
}

func (api *examApi) approve(ctx echo.Context) error {
	if _, err := api.svc.ApproveResults(ctx.Request().Context(), contextActor(ctx), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okBody)
}

func (api *examApi) studentResults(ctx echo.Context) error {
	results, err := api.svc.StudentResults(ctx.Request().Context(), contextActor(ctx), exam.StudentResultFilter{
		StudentID:      ctx.Param("id"),
		TermID:         core.CleanString(ctx.QueryParam("term_id")),
		AcademicYearID: core.CleanString(ctx.QueryParam("academic_year_id")),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *examApi) classResults(ctx echo.Context) error {
	results, err := api.svc.ClassResults(ctx.Request().Context(), ctx.Param("id"), core.CleanString(ctx.QueryParam("term_id")))
	if err != nil {
		return errors.Wrap(err, "querying class results")
	}
	return ctx.JSON(http.StatusOK, results)
}
