package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

// requireRoles lets through the users having one of roles.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Actor().HasRole(roles...) {
				return next(ctx)
			}
			return core.ErrForbidden
		}
	}
}

// plusRoles returns a copy of roles with more appended.
func plusRoles(roles []string, more ...string) []string {
	out := make([]string, 0, len(roles)+len(more))
	return append(append(out, roles...), more...)
}
