package service

import (
	"sort"
	"time"

	"phonebook/contacts-api/internal/model"
)

// BirthdayWindowDays is the lookahead used by the next-week endpoint. The
// window is inclusive on both ends: today plus the following six days.
const BirthdayWindowDays = 7

// NextBirthday returns the next occurrence of a birthday on or after today,
// ignoring the birth year. A Feb 29 birthday lands on March 1 in non-leap
// years, which is what time.Date's normalization produces naturally.
func NextBirthday(birthday, today time.Time) time.Time {
	t := dateOnly(today)

	next := time.Date(t.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(t) {
		next = time.Date(t.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}

	return next
}

// UpcomingBirthdays filters contacts down to those whose next birthday falls
// within the closed window [today, today+days-1]. The result is ordered by
// days until the birthday, ties broken by contact ID so output is stable.
func UpcomingBirthdays(contacts []model.Contact, today time.Time, days int) []model.Contact {
	t := dateOnly(today)
	end := t.AddDate(0, 0, days-1)

	type upcoming struct {
		contact model.Contact
		until   int
	}

	matched := make([]upcoming, 0, len(contacts))

	for _, c := range contacts {
		next := NextBirthday(c.Birthday.Time, t)
		if next.After(end) {
			continue
		}

		matched = append(matched, upcoming{
			contact: c,
			until:   int(next.Sub(t).Hours() / 24),
		})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].until != matched[j].until {
			return matched[i].until < matched[j].until
		}
		return matched[i].contact.ID < matched[j].contact.ID
	})

	out := make([]model.Contact, len(matched))
	for i, m := range matched {
		out[i] = m.contact
	}

	return out
}

// dateOnly pins the calendar date to UTC midnight so day arithmetic never
// crosses a DST transition.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
