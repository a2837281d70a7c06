package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks s and returns the first failing field, in declaration
// order, formatted with message. message receives the JSON field name.
func (v *Validator) Validate(s any, message func(field string) string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation("%s", message(verrs[0].Field()))
	}
	return apperr.Unexpected(err, "validation failed")
}

const errorStyleKey = "error_style"

// StatusStyle makes the error handler answer with {status:"error", message}
// instead of {success:false, error}.
func StatusStyle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(errorStyleKey, "status")
		return c.Next()
	}
}

func statusOf(err error) int {
	if e, ok := apperr.As(err); ok {
		return e.HTTPStatus()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	message := "Internal server error"
	var detail string

	if e, ok := apperr.As(err); ok {
		if e.Kind != apperr.KindUnexpected {
			message = e.Message
		}
		detail = e.Detail
	} else {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}
	}

	event := logger.Get().Warn()
	if code >= fiber.StatusInternalServerError {
		event = logger.Get().Error()
	}
	event.
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	body := fiber.Map{"success": false, "error": message}
	if c.Locals(errorStyleKey) == "status" {
		body = fiber.Map{"status": "error", "message": message}
	}
	if detail != "" {
		body["detail"] = detail
	}

	return c.Status(code).JSON(body)
}
