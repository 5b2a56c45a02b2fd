package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// NewValidator returns the request validator shared by the services and the
// HTTP layer.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("priority", validPriority)
	_ = v.RegisterValidation("calendardate", validCalendarDate)
	return v
}

// validPriority accepts what entities.ParsePriority accepts, so case is folded
// the same way on every path.
func validPriority(fl validator.FieldLevel) bool {
	_, err := entities.ParsePriority(fl.Field().String())
	return err == nil
}

// validCalendarDate accepts YYYY-MM-DD and an RFC 3339 timestamp prefixed by one.
func validCalendarDate(fl validator.FieldLevel) bool {
	_, err := entities.ParseDate(fl.Field().String())
	return err == nil
}

// validateRequest runs struct validation and folds failures into
// ErrInvalidInput so callers only need errors.Is.
func validateRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", entities.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
}
