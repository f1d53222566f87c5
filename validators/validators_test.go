package validators_test

import (
	"strings"
	"testing"
	"time"

	"contactsapi/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, validators.EmailValidator("alice@example.com"))
	assert.ErrorIs(t, validators.EmailValidator(""), validators.ErrEmailEmpty)
	assert.ErrorIs(t, validators.EmailValidator("not-an-email"), validators.ErrEmailInvalid)
	assert.ErrorIs(t, validators.EmailValidator(strings.Repeat("a", 145)+"@example.com"), validators.ErrEmailTooLong)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, validators.PasswordValidator("longenough"))
	assert.ErrorIs(t, validators.PasswordValidator(""), validators.ErrPasswordEmpty)
	assert.ErrorIs(t, validators.PasswordValidator("short"), validators.ErrPasswordTooShort)
	assert.ErrorIs(t, validators.PasswordValidator(strings.Repeat("x", 256)), validators.ErrPasswordTooLong)
}

func TestBornDateValidator(t *testing.T) {
	d, err := validators.BornDateValidator("1999-12-12")
	require.NoError(t, err)
	assert.Equal(t, 1999, d.Year())
	assert.Equal(t, time.December, d.Month())
	assert.Equal(t, 12, d.Day())

	_, err = validators.BornDateValidator("12/12/1999")
	assert.ErrorIs(t, err, validators.ErrBornDateInvalid)

	today := time.Now().UTC().Format("2006-01-02")
	_, err = validators.BornDateValidator(today)
	assert.ErrorIs(t, err, validators.ErrBornDateFuture)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	_, err = validators.BornDateValidator(tomorrow)
	assert.ErrorIs(t, err, validators.ErrBornDateFuture)
}
