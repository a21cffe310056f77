package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/message"
)

type messageApi struct {
	svc      *message.Service
	validate *validator.Validate
}

// registerMessageAPI serves the internal messaging of every role.
func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *message.Service, validate *validator.Validate) {
	api := messageApi{svc: svc, validate: validate}

	mg := g.Group("/messages", jwt)
	mg.GET("", api.folder)
	mg.POST("", api.send)
	mg.GET("/users", api.contacts)
	mg.GET("/:id", api.retrieve)
}

func (api *messageApi) folder(ctx echo.Context) error {
	folder := core.CleanString(ctx.QueryParam("folder"), true /* lower */)
	msgs, err := api.svc.Folder(ctx.Request().Context(), contextActor(ctx), folder, pageParams(ctx, 50, 100))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data message.NewMessage
	if err := bindValid(ctx, api.validate, &data, "NewMessage"); err != nil {
		return err
	}
	m, err := api.svc.Send(ctx.Request().Context(), contextActor(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messageApi) contacts(ctx echo.Context) error {
	contacts, err := api.svc.Contacts(ctx.Request().Context(), contextActor(ctx), ctx.QueryParam("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, contacts)
}

func (api *messageApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.Get(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}
