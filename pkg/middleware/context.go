package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	reqcontext "github.com/AudioList/deals-api/pkg/context"
)

// Context copies request metadata into the request context so loggers and
// error responses can reach it without the echo context.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = reqcontext.SetRequestID(ctx, requestID)
			ctx = reqcontext.SetRoute(ctx, c.Path())
			ctx = reqcontext.SetRemoteIP(ctx, c.RealIP())

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
