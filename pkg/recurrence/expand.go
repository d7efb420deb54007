// Package recurrence turns a debit definition into the concrete dates it
// falls due on. Expansion is pure: the stored definition is never mutated,
// the same inputs always produce the same dates.
package recurrence

import (
	"time"

	"github.com/previpay/previpay/pkg/models"
)

// MaxOccurrences caps a single expansion. The step functions below always
// move forward, so the cap only matters if one of them ever regresses; in
// that case the sequence truncates instead of looping.
const MaxOccurrences = 100

// NextDate advances a date by one frequency step. Month-based steps keep the
// day-of-month, clamped to the last valid day of the target month: Jan 31
// plus one month is Feb 28 (29 in leap years). Week-based steps are exact
// 7/14-day additions. For "once" the date is returned unchanged.
func NextDate(t time.Time, freq models.Frequency) time.Time {
	switch freq {
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case models.FrequencyMonthly:
		return addMonthsClamped(t, 1)
	case models.FrequencyQuarterly:
		return addMonthsClamped(t, 3)
	case models.FrequencyBiannual:
		return addMonthsClamped(t, 6)
	case models.FrequencyAnnual:
		return addMonthsClamped(t, 12)
	default:
		return t
	}
}

// addMonthsClamped adds months without the day-overflow behavior of
// time.AddDate (which would turn Jan 31 + 1 month into Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	targetMonth := time.Month(int(month) + months)
	firstOfTarget := time.Date(year, targetMonth, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// Expand returns the dated occurrences of a debit within [start, end],
// ordered ascending. Paused debits and completed one-off debits produce
// nothing, regardless of the horizon. A definition anchored before the
// horizon still rolls forward into it.
func Expand(debit *models.Debit, start, end time.Time) ([]models.Occurrence, error) {
	if end.Before(start) {
		return nil, nil
	}
	if debit.IsPaused || debit.Status == models.StatusCompleted {
		return nil, nil
	}

	anchor, err := debit.NextDate()
	if err != nil {
		return nil, err
	}

	if debit.Frequency == models.FrequencyOnce {
		if within(anchor, start, end) {
			return []models.Occurrence{occurrenceAt(debit, anchor)}, nil
		}
		return nil, nil
	}

	var occurrences []models.Occurrence
	for date := anchor; !date.After(end); {
		if !date.Before(start) {
			occurrences = append(occurrences, occurrenceAt(debit, date))
			if len(occurrences) >= MaxOccurrences {
				break
			}
		}
		next := NextDate(date, debit.Frequency)
		if !next.After(date) {
			// A non-advancing step would spin forever; bail out.
			break
		}
		date = next
	}
	return occurrences, nil
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func occurrenceAt(debit *models.Debit, date time.Time) models.Occurrence {
	category := debit.Category
	if category == "" {
		category = models.DefaultCategory
	}
	return models.Occurrence{
		DebitID:     debit.ID,
		CompanyName: debit.CompanyName,
		Category:    category,
		Date:        date,
		Amount:      debit.Amount,
		Source:      debit.Source,
	}
}
