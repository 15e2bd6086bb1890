package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"labbook/pkg/logger"
	"labbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var operatingTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SchedulingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSchedulingValidator(log *logger.Logger) *SchedulingValidator {
	v := validator.New()

	if err := v.RegisterValidation("operating_time", validateOperatingTime); err != nil {
		log.Fatal("Failed to register 'operating_time' validator", "error", err)
	}

	log.Info("Scheduling validator initialized successfully")

	return &SchedulingValidator{
		validate: v,
		logger:   log,
	}
}

func validateOperatingTime(fl validator.FieldLevel) bool {
	return operatingTimeRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ValidateQuery checks an availability question before it reaches the
// evaluator. The end-after-start rule is enforced here so the evaluator can
// assume a well-formed candidate interval.
func (v *SchedulingValidator) ValidateQuery(q *model.AvailabilityQuery) error {
	if err := v.validate.Struct(q); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *SchedulingValidator) ValidateExtension(q *model.ExtensionQuery) error {
	if err := v.validate.Struct(q); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

// ValidateSite guards the operating-hours invariant: well-formed HH:MM
// strings, a known IANA timezone and an opening strictly before closing on
// the same calendar day.
func (v *SchedulingValidator) ValidateSite(site *model.Site) error {
	if err := v.validate.Struct(site); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if site.OpeningTime >= site.ClosingTime {
		return ValidationErrors{
			ValidationError{
				Field:   "ClosingTime",
				Message: "closing_time must be after opening_time within the same day",
			},
		}
	}

	return nil
}

func (v *SchedulingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone identifier", err.Field())
		case "operating_time":
			message = fmt.Sprintf("%s must be in HH:MM format (00:00-23:59)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
