package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
)

// publicApi serves the public website: institution settings, news and the forms/streams of the admission form.
type publicApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerPublicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := publicApi{svc: svc, validate: validate}

	pg := g.Group("/public")
	pg.GET("/settings", api.settings)
	pg.GET("/news", api.news)
	pg.GET("/forms", api.forms)
	pg.GET("/streams", api.streams)

	g.POST("/news", api.createNews, jwt, requireRoles(user.AdminRoles...))
	g.PUT("/settings", api.saveSettings, jwt, requireRoles(user.RoleSuperAdmin))
}

func (api *publicApi) settings(ctx echo.Context) error {
	settings, err := api.svc.Settings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	if settings == nil {
		settings = school.Settings{}
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *publicApi) news(ctx echo.Context) error {
	news, err := api.svc.News(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying news")
	}
	return ctx.JSON(http.StatusOK, news)
}

func (api *publicApi) forms(ctx echo.Context) error {
	forms, err := api.svc.Forms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying forms")
	}
	return ctx.JSON(http.StatusOK, forms)
}

func (api *publicApi) streams(ctx echo.Context) error {
	streams, err := api.svc.Streams(ctx.Request().Context(), core.CleanString(ctx.QueryParam("form_id")))
	if err != nil {
		return errors.Wrap(err, "querying streams")
	}
	return ctx.JSON(http.StatusOK, streams)
}

func (api *publicApi) createNews(ctx echo.Context) error {
	var data school.NewNewsItem
	if err := bindValid(ctx, api.validate, &data, "NewNewsItem"); err != nil {
		return err
	}
	item, err := api.svc.CreateNews(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *publicApi) saveSettings(ctx echo.Context) error {
	var data school.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	settings, err := api.svc.SaveSettings(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}
