package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core/admission"
	"github.com/trezcool/chikoro/core/user"
)

type admissionApi struct {
	svc      *admission.Service
	validate *validator.Validate
}

func registerAdmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *admission.Service, validate *validator.Validate) {
	api := admissionApi{svc: svc, validate: validate}
	admins := requireRoles(user.AdminRoles...)

	ag := g.Group("/applications")

	// un-authed endpoints, used by the public admission form
	ag.POST("", api.submit)
	ag.POST("/:id/documents", api.addDocument)

	// authed endpoints
	ag.GET("", api.query, jwt, admins)
	ag.GET("/:id", api.retrieve, jwt, admins)
	ag.POST("/:id/review", api.review, jwt, admins)
}

func (api *admissionApi) submit(ctx echo.Context) error {
	var data admission.NewApplication
	if err := bindValid(ctx, api.validate, &data, "NewApplication"); err != nil {
		return err
	}
	app, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmittedApplication{
		ID:        app.ID,
		FirstName: app.FirstName,
		LastName:  app.LastName,
		Email:     app.Email,
		Status:    app.Status,
		CreatedAt: app.CreatedAt,
	})
}

// addDocument reads the document from the query string, or else from the body.
func (api *admissionApi) addDocument(ctx echo.Context) error {
	var data admission.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	for param, dest := range map[string]*string{
		"document_type": &data.DocumentType,
		"file_path":     &data.FilePath,
		"file_name":     &data.FileName,
	} {
		if val := ctx.QueryParam(param); val != "" {
			*dest = val
		}
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.AddDocument(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"id": doc.ID})
}

func (api *admissionApi) query(ctx echo.Context) error {
	apps, err := api.svc.Applications(ctx.Request().Context(), ctx.QueryParam("status"), pageParams(ctx, 50, 100))
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) review(ctx echo.Context) error {
	var data admission.Review
	if err := bindValid(ctx, api.validate, &data, "Review"); err != nil {
		return err
	}
	app, err := api.svc.Review(ctx.Request().Context(), contextActor(ctx), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

// SubmittedApplication is what an applicant gets back.
type SubmittedApplication struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
