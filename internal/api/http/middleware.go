package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/observability"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares. Order matters: the
// request logger wraps everything so it records the status the error
// renderer finally wrote.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorRenderer(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorRenderer turns handler errors and panics into the JSON error body
// {"error":{"code","message","details","requestId"}}.
func errorRenderer(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", requestID(c)),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := classifyError(err)
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			logFailure(logger, c, domainErr)
			err = renderError(c, domainErr)
		}()
		return c.Next()
	}
}

func classifyError(err error) *apperrors.DomainError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.CodeTimeout, "request timed out", fiber.StatusGatewayTimeout, err)
	}
	return apperrors.ToDomainError(err)
}

func logFailure(logger *zap.Logger, c *fiber.Ctx, domainErr *apperrors.DomainError) {
	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.String("code", domainErr.Code),
		zap.Error(domainErr),
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		fields = append(fields, zap.Int64("user_id", principal.UserID))
	}

	switch {
	case domainErr.HTTPStatus >= fiber.StatusInternalServerError:
		logger.Error("request failed", fields...)
	case domainErr.HTTPStatus == fiber.StatusUnauthorized, domainErr.HTTPStatus == fiber.StatusForbidden:
		logger.Debug("request rejected", fields...)
	}
}

func renderError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if id := requestID(c); id != "" {
		body["requestId"] = id
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

func requestID(c *fiber.Ctx) string {
	return string(c.Response().Header.Peek(observability.RequestIDHeader))
}
