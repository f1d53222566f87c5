package validators

import (
	"errors"
	"time"
)

var (
	ErrBornDateInvalid = errors.New("born_date must be a YYYY-MM-DD date")
	ErrBornDateFuture  = errors.New("born_date must be in the past")
)

// BornDateValidator parses a YYYY-MM-DD date and requires it to lie
// strictly before today.
func BornDateValidator(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrBornDateInvalid
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if !d.Before(today) {
		return time.Time{}, ErrBornDateFuture
	}

	return d, nil
}
