package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var errNoSelfDeactivation = core.NewForbiddenError("You cannot deactivate your own account")

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	ug := g.Group("/users", jwt)
	ug.GET("", api.query, requireRoles(user.AdminRoles...))
	ug.POST("", api.create, requireRoles(user.RoleSuperAdmin))
	ug.GET("/roles", api.queryRoles, requireRoles(user.AdminRoles...))
	ug.PATCH("/:id", api.update, requireRoles(user.RoleSuperAdmin))
}

// Handlers

func (api *userApi) query(ctx echo.Context) error {
	filter := user.QueryFilter{
		Search:   ctx.QueryParam("search"),
		IsActive: boolParam(ctx, "is_active"),
	}
	for _, val := range ctx.QueryParams()["role"] {
		filter.Roles = append(filter.Roles, strings.Split(val, ",")...)
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), filter, pageParams(ctx, 50, 100), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := bindValid(ctx, api.validate, &data, "NewUser"); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	var data user.UpdateUser
	if err := bindValid(ctx, api.validate, &data, "UpdateUser"); err != nil {
		return err
	}

	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	// Say No to Suicide! ctxUser cannot deactivate themselves
	if !*data.IsActive && usr.ID == contextActor(ctx).UserID {
		return errNoSelfDeactivation
	}

	usr, err = api.svc.SetActive(ctx.Request().Context(), usr, *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}
