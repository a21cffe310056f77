package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/learning"
	"github.com/trezcool/chikoro/core/user"
)

type learningApi struct {
	svc      *learning.Service
	validate *validator.Validate
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *learning.Service, validate *validator.Validate) {
	api := learningApi{svc: svc, validate: validate}
	readers := requireRoles(plusRoles(user.StaffRoles, user.RoleStudent)...)

	lg := g.Group("/learning", jwt)
	lg.GET("/materials", api.materials, readers)
	lg.POST("/materials", api.createMaterial, requireRoles(user.StaffRoles...))
	lg.GET("/library", api.library, readers)
}

func (api *learningApi) materials(ctx echo.Context) error {
	actor := contextActor(ctx)
	filter := learning.MaterialFilter{
		ClassID:   core.CleanString(ctx.QueryParam("class_id")),
		StudentID: core.CleanString(ctx.QueryParam("student_id")),
	}
	if actor.HasRole(user.RoleStudent) && filter.StudentID == "" {
		if actor.StudentID == "" {
			return errNoStudentProfile
		}
		filter.StudentID = actor.StudentID
	}

	materials, err := api.svc.Materials(ctx.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *learningApi) createMaterial(ctx echo.Context) error {
	var data learning.NewMaterial
	if err := bindValid(ctx, api.validate, &data, "NewMaterial"); err != nil {
		return err
	}
	m, err := api.svc.CreateMaterial(ctx.Request().Context(), contextActor(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *learningApi) library(ctx echo.Context) error {
	items, err := api.svc.Library(ctx.Request().Context(), ctx.QueryParam("category"))
	if err != nil {
		return errors.Wrap(err, "querying library")
	}
	return ctx.JSON(http.StatusOK, items)
}
