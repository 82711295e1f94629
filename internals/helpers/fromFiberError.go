package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"edudesk_backend/internals/store"
)

// FromFiberError mengubah error hasil service (biasanya *fiber.Error)
// menjadi response JSON konsisten via JsonError.
// Jika bukan *fiber.Error, fallback ke 500 dengan pesan asli.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}

// FromError: mapping error store/validator/fiber ke envelope standar.
//   - validator.ValidationErrors / store.ErrInvalid -> 422
//   - store.ErrDuplicate -> 409
//   - store.ErrNotFound  -> 404
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return JsonValidationError(c, ValidationErrorMap(ve))
	}
	var fe *FieldValidationError
	if errors.As(err, &fe) {
		return FieldError(c, fe.Field, fe.Msg)
	}
	switch {
	case errors.Is(err, store.ErrInvalid):
		return JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		return JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return JsonError(c, fiber.StatusNotFound, "Data tidak ditemukan")
	}
	return FromFiberError(c, err)
}

// ValidationErrorMap: field (json name, lower camel) -> daftar tag yang gagal.
func ValidationErrorMap(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[field] = append(out[field], msg)
	}
	return out
}

// FieldValidationError: error validasi bisnis dari service (422 satu field).
type FieldValidationError struct {
	Field string
	Msg   string
}

func (e *FieldValidationError) Error() string { return e.Field + ": " + e.Msg }

func NewFieldError(field, msg string) error { return &FieldValidationError{Field: field, Msg: msg} }

// FieldError: 422 untuk satu field (validasi bisnis di luar tag validator).
func FieldError(c *fiber.Ctx, field, msg string) error {
	return JsonValidationError(c, map[string][]string{field: {msg}})
}

// ErrorHandler: fiber.Config.ErrorHandler; error dari middleware/handler ikut envelope standar.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
