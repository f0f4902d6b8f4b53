package middleware

import (
	"errors"
	"net/http"

	"github.com/cicbolivia/portal/internal/apperr"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateQuery parses query parameters into a fresh T, validates it and
// stores it in c.Locals("query").
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := new(T)
		if err := c.QueryParser(params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Parámetros inválidos",
				"msg":   err.Error(),
			})
		}

		if err := validate.Struct(params); err != nil {
			fields := make(map[string]string)
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					fields[fe.Field()] = fe.Tag()
				}
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Parámetros inválidos",
				"fields": fields,
			})
		}

		c.Locals("query", params)
		return c.Next()
	}
}

// StatusFor maps an error to the HTTP status the portal answers with.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperr.KindTransport:
		return fiber.StatusBadGateway
	case apperr.KindHTTP:
		if s := apperr.StatusOf(err); s >= 400 && s < 500 {
			return s
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber error handler: it logs the error and answers
// with a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
