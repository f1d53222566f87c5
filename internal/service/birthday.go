package service

import "time"

const birthdayWindow = 7 * 24 * time.Hour

// BirthdayCandidate pairs a contact ID with its birth date for the
// upcoming-birthday check.
type BirthdayCandidate struct {
	ID       uint
	BornDate time.Time
}

// UpcomingBirthdayIDs returns the IDs of candidates whose next birthday
// anniversary falls within the next 7 days of today, both ends inclusive.
// Only the calendar date matters, time of day is ignored. A Feb-29 birth
// date lands on Mar-1 in non-leap years (time.Date normalization).
func UpcomingBirthdayIDs(candidates []BirthdayCandidate, today time.Time) []uint {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	ids := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		anniversary := time.Date(today.Year(), c.BornDate.Month(), c.BornDate.Day(), 0, 0, 0, 0, time.UTC)
		if anniversary.Before(today) {
			anniversary = time.Date(today.Year()+1, c.BornDate.Month(), c.BornDate.Day(), 0, 0, 0, 0, time.UTC)
		}

		if anniversary.Sub(today) <= birthdayWindow {
			ids = append(ids, c.ID)
		}
	}

	return ids
}
