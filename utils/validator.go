package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for due dates and other date fields.
const DateLayout = "2006-01-02"

var validate = validator.New()

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	// Format validation errors
	var errors []string
	for _, err := range err.(validator.ValidationErrors) {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errors = append(errors, field+" is required")
		case "min":
			errors = append(errors, field+" must be at least "+param+" characters")
		case "max":
			errors = append(errors, field+" must be at most "+param+" characters")
		case "email":
			errors = append(errors, field+" must be a valid email")
		case "gte":
			errors = append(errors, field+" must be at least "+param)
		case "eqfield":
			errors = append(errors, field+" must match "+param)
		default:
			errors = append(errors, field+" is invalid")
		}
	}

	return fmt.Errorf(strings.Join(errors, ", "))
}

// ParseDate parses a date field, rejecting malformed input.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected %s", DateLayout)
	}
	return parsed, nil
}

// ParseFutureDate additionally requires the date to be strictly after
// today; today itself is rejected.
func ParseFutureDate(value string) (time.Time, error) {
	parsed, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	if !parsed.After(Today()) {
		return time.Time{}, fmt.Errorf("due date must be in the future")
	}
	return parsed, nil
}

// ParseTodayOrLaterDate requires the date to be no earlier than today.
func ParseTodayOrLaterDate(value string) (time.Time, error) {
	parsed, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	if parsed.Before(Today()) {
		return time.Time{}, fmt.Errorf("due date cannot be before today")
	}
	return parsed, nil
}

// Today returns midnight UTC of the current day.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
