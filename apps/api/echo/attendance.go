package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core/attendance"
	"github.com/trezcool/chikoro/core/user"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}
	staff := requireRoles(user.StaffRoles...)

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.class, staff)
	ag.POST("", api.mark, staff)
	ag.POST("/bulk", api.bulkMark, staff)
	ag.GET("/student/:id", api.student, requireRoles(plusRoles(user.StaffRoles, user.RoleStudent, user.RoleParent)...))
}

func (api *attendanceApi) class(ctx echo.Context) error {
	classID, err := requiredParam(ctx, "class_id")
	if err != nil {
		return err
	}
	from, err := dateParam(ctx, "from_date")
	if err != nil {
		return err
	}
	to, err := dateParam(ctx, "to_date")
	if err != nil {
		return err
	}

	records, err := api.svc.ClassAttendance(ctx.Request().Context(), classID, from, to)
	if err != nil {
		return errors.Wrap(err, "querying class attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) student(ctx echo.Context) error {
	from, err := dateParam(ctx, "from_date")
	if err != nil {
		return err
	}
	to, err := dateParam(ctx, "to_date")
	if err != nil {
		return err
	}

	records, err := api.svc.StudentAttendance(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	classID, err := requiredParam(ctx, "class_id")
	if err != nil {
		return err
	}
	var data attendance.Mark
	if err = bindValid(ctx, api.validate, &data, "Mark"); err != nil {
		return err
	}

	if err = api.svc.Mark(ctx.Request().Context(), contextActor(ctx), classID, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okBody)
}

func (api *attendanceApi) bulkMark(ctx echo.Context) error {
	classID, err := requiredParam(ctx, "class_id")
	if err != nil {
		return err
	}
	var data attendance.BulkMark
	if err = bindValid(ctx, api.validate, &data, "BulkMark"); err != nil {
		return err
	}

	saved, err := api.svc.BulkMark(ctx.Request().Context(), contextActor(ctx), classID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, okResponse{OK: true, Saved: &saved})
}
