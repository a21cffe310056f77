package echoapi

import (
	"fmt"
	"net/http"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	errAccountInactive    = echo.NewHTTPError(http.StatusForbidden, "Account is inactive")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errTooManyAttempts    = echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
	errFileTooLarge       = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")

	invalidInput = "Invalid input"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Every error body carries a "detail" message, plus "fields" on validation errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code   int
			detail string
			fields map[string]string
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				detail = fmt.Sprint(origErr.Message)
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			detail = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fields[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			detail = firstFieldError(fields)
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fields[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			if detail = origErr.Error(); detail == "" {
				detail = invalidInput
			}
		case *core.ForbiddenError:
			code = http.StatusForbidden
			detail = origErr.Msg
		default:
			if core.IsNotFound(err) {
				code = http.StatusNotFound
				detail = "not found"
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			detail = http.StatusText(http.StatusInternalServerError)
			logger.Error(detail, errors.Wrap(err, detail), contextActor(ctx).Person())

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		body := echo.Map{"detail": detail}
		if fields != nil {
			body["fields"] = fields
		}
		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body["error"] = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// firstFieldError picks the message of the first field in alphabetical order.
func firstFieldError(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return invalidInput
	}
	return fields[names[0]]
}
