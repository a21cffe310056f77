package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/coursework"
	"github.com/trezcool/chikoro/core/user"
)

type courseworkApi struct {
	svc      *coursework.Service
	validate *validator.Validate
}

func registerCourseworkAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *coursework.Service, validate *validator.Validate) {
	api := courseworkApi{svc: svc, validate: validate}
	staff := requireRoles(user.StaffRoles...)

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query, requireRoles(plusRoles(user.StaffRoles, user.RoleStudent)...))
	ag.POST("", api.create, staff)
	ag.GET("/:id", api.retrieve, staff)
	ag.GET("/:id/submissions", api.submissions, staff)
	ag.POST("/:id/submit", api.submit, requireRoles(user.RoleStudent))
	ag.POST("/:id/submissions/:sid/grade", api.grade, staff)
}

// query lists the assignments of a student (with their submission), of a class, or all of them.
func (api *courseworkApi) query(ctx echo.Context) error {
	actor := contextActor(ctx)
	studentID := core.CleanString(ctx.QueryParam("student_id"))
	if actor.HasRole(user.RoleStudent) && studentID == "" {
		studentID = actor.StudentID
		if studentID == "" {
			return errNoStudentProfile
		}
	}

	if studentID != "" {
		assignments, err := api.svc.StudentAssignments(ctx.Request().Context(), actor, studentID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, assignments)
	}

	assignments, err := api.svc.Assignments(ctx.Request().Context(), core.CleanString(ctx.QueryParam("class_id")))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *courseworkApi) create(ctx echo.Context) error {
	var data coursework.NewAssignment
	if err := bindValid(ctx, api.validate, &data, "NewAssignment"); err != nil {
		return err
	}
	a, err := api.svc.CreateAssignment(ctx.Request().Context(), contextActor(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *courseworkApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetAssignment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *courseworkApi) submissions(ctx echo.Context) error {
	subs, err := api.svc.Submissions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *courseworkApi) submit(ctx echo.Context) error {
	var data coursework.SubmitWork
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitWork")
	}
	if _, err := api.svc.Submit(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okBody)
}

func (api *courseworkApi) grade(ctx echo.Context) error {
	var data coursework.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	if _, err := api.svc.GradeSubmission(ctx.Request().Context(), ctx.Param("id"), ctx.Param("sid"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okBody)
}
