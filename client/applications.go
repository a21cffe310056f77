package client

import (
	"context"
	"time"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/admission"
)

// SubmittedApplication is what the public form gets back.
type SubmittedApplication struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ApplicationsAPI struct{ c *Client }

// Submit does not need a session.
func (api ApplicationsAPI) Submit(ctx context.Context, na admission.NewApplication) (SubmittedApplication, error) {
	var app SubmittedApplication
	err := api.c.post(ctx, "/applications", na, &app)
	return app, err
}

// AddDocument attaches an uploaded file (see UploadsAPI) to a pending application and returns its id.
func (api ApplicationsAPI) AddDocument(ctx context.Context, id string, nd admission.NewDocument) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	err := api.c.post(ctx, pathID("/applications", id, "/documents"), nd, &res)
	return res.ID, err
}

func (api ApplicationsAPI) List(ctx context.Context, status string, page core.Page) ([]admission.Application, error) {
	var apps []admission.Application
	err := api.c.get(ctx, "/applications", pageParams(params("status", status), page), &apps)
	return apps, err
}

func (api ApplicationsAPI) Get(ctx context.Context, id string) (admission.ApplicationDetail, error) {
	var app admission.ApplicationDetail
	err := api.c.get(ctx, pathID("/applications", id), nil, &app)
	return app, err
}

func (api ApplicationsAPI) Review(ctx context.Context, id string, r admission.Review) (admission.Application, error) {
	var app admission.Application
	err := api.c.post(ctx, pathID("/applications", id, "/review"), r, &app)
	return app, err
}
