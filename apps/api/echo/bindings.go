package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pageParams reads `skip` and `limit`. Bad values are clamped like out-of-range ones.
func pageParams(ctx echo.Context, def, max int) core.Page {
	skip, _ := strconv.Atoi(ctx.QueryParam("skip"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	return core.NewPage(skip, limit, def, max)
}

// dateParam parses the YYYY-MM-DD query param name; a missing param is the zero Date.
func dateParam(ctx echo.Context, name string) (core.Date, error) {
	d, err := core.ParseDate(strings.TrimSpace(ctx.QueryParam(name)))
	if err != nil {
		return core.Date{}, core.NewFieldError(name, err.Error())
	}
	return d, nil
}

// boolParam parses the query param name; nil when missing or unparsable.
func boolParam(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(ctx.QueryParam(name)))
	if err != nil {
		return nil
	}
	return &b
}

// requiredParam returns the trimmed query param name, or a validation error when it is empty.
func requiredParam(ctx echo.Context, name string) (string, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return "", core.NewFieldError(name, name+" is required")
	}
	return val, nil
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindValid binds the request body into data, then validates it.
func bindValid(ctx echo.Context, validate *validator.Validate, data validatable, what string) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to "+what)
	}
	return data.Validate(validate)
}

type okResponse struct {
	OK    bool `json:"ok"`
	Saved *int `json:"saved,omitempty"`
}

var okBody = okResponse{OK: true}
