package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRejectsMalformed(t *testing.T) {
	for _, value := range []string{"", "2026/01/02", "02-01-2026", "not a date"} {
		_, err := ParseDate(value)
		assert.Error(t, err, "value %q", value)
	}

	parsed, err := ParseDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseFutureDateRejectsToday(t *testing.T) {
	today := Today().Format(DateLayout)
	_, err := ParseFutureDate(today)
	assert.Error(t, err, "today is not in the future")

	yesterday := Today().AddDate(0, 0, -1).Format(DateLayout)
	_, err = ParseFutureDate(yesterday)
	assert.Error(t, err)

	tomorrow := Today().AddDate(0, 0, 1).Format(DateLayout)
	_, err = ParseFutureDate(tomorrow)
	assert.NoError(t, err)
}

func TestParseTodayOrLaterDateAcceptsToday(t *testing.T) {
	today := Today().Format(DateLayout)
	_, err := ParseTodayOrLaterDate(today)
	assert.NoError(t, err)

	yesterday := Today().AddDate(0, 0, -1).Format(DateLayout)
	_, err = ParseTodayOrLaterDate(yesterday)
	assert.Error(t, err)
}

func TestValidateStructMessages(t *testing.T) {
	type input struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	err := ValidateStruct(input{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")

	assert.NoError(t, ValidateStruct(input{Email: "a@b.com", Password: "longenough"}))
}
