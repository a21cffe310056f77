package client

import (
	"context"
	"net/http"

	"github.com/trezcool/chikoro/core/school"
)

type PublicAPI struct{ c *Client }

func (api PublicAPI) Settings(ctx context.Context) (school.Settings, error) {
	var settings school.Settings
	err := api.c.get(ctx, "/public/settings", nil, &settings)
	return settings, err
}

func (api PublicAPI) News(ctx context.Context) ([]school.NewsItem, error) {
	var news []school.NewsItem
	err := api.c.get(ctx, "/public/news", nil, &news)
	return news, err
}

func (api PublicAPI) Forms(ctx context.Context) ([]school.Form, error) {
	var forms []school.Form
	err := api.c.get(ctx, "/public/forms", nil, &forms)
	return forms, err
}

func (api PublicAPI) Streams(ctx context.Context, formID string) ([]school.Stream, error) {
	var streams []school.Stream
	err := api.c.get(ctx, "/public/streams", params("form_id", formID), &streams)
	return streams, err
}

func (api PublicAPI) CreateNews(ctx context.Context, item school.NewNewsItem) (school.NewsItem, error) {
	var created school.NewsItem
	err := api.c.post(ctx, "/news", item, &created)
	return created, err
}

func (api PublicAPI) SaveSettings(ctx context.Context, settings school.Settings) (school.Settings, error) {
	var saved school.Settings
	err := api.c.doJSON(ctx, http.MethodPut, "/settings", nil, settings, &saved)
	return saved, err
}

type ClassesAPI struct{ c *Client }

func (api ClassesAPI) List(ctx context.Context, filter school.ClassFilter) ([]school.Class, error) {
	var classes []school.Class
	q := params("academic_year_id", filter.AcademicYearID, "form_id", filter.FormID)
	err := api.c.get(ctx, "/classes", q, &classes)
	return classes, err
}

func (api ClassesAPI) Get(ctx context.Context, id string) (school.Class, error) {
	var class school.Class
	err := api.c.get(ctx, pathID("/classes", id), nil, &class)
	return class, err
}

func (api ClassesAPI) AcademicYears(ctx context.Context) ([]school.AcademicYear, error) {
	var years []school.AcademicYear
	err := api.c.get(ctx, "/classes/academic-years", nil, &years)
	return years, err
}

func (api ClassesAPI) Terms(ctx context.Context, academicYearID string) ([]school.Term, error) {
	var terms []school.Term
	err := api.c.get(ctx, "/classes/terms", params("academic_year_id", academicYearID), &terms)
	return terms, err
}

func (api ClassesAPI) Forms(ctx context.Context) ([]school.Form, error) {
	var forms []school.Form
	err := api.c.get(ctx, "/classes/forms", nil, &forms)
	return forms, err
}

func (api ClassesAPI) Streams(ctx context.Context, formID string) ([]school.Stream, error) {
	var streams []school.Stream
	err := api.c.get(ctx, "/classes/streams", params("form_id", formID), &streams)
	return streams, err
}

type SubjectsAPI struct{ c *Client }

func (api SubjectsAPI) List(ctx context.Context) ([]school.Subject, error) {
	var subjects []school.Subject
	err := api.c.get(ctx, "/subjects", nil, &subjects)
	return subjects, err
}
