package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/previpay/previpay/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyDebit(anchor string) *models.Debit {
	return &models.Debit{
		ID:              "deb-1",
		CompanyName:     "Netflix",
		Amount:          models.NewAmount("15.99"),
		Category:        "Entertainment",
		Frequency:       models.FrequencyMonthly,
		NextPaymentDate: anchor,
		Status:          models.StatusActive,
	}
}

func TestNextDateSteps(t *testing.T) {
	tests := []struct {
		name string
		freq models.Frequency
		from time.Time
		want time.Time
	}{
		{"weekly", models.FrequencyWeekly, date(2025, time.March, 3), date(2025, time.March, 10)},
		{"biweekly", models.FrequencyBiweekly, date(2025, time.March, 3), date(2025, time.March, 17)},
		{"monthly", models.FrequencyMonthly, date(2025, time.March, 15), date(2025, time.April, 15)},
		{"quarterly", models.FrequencyQuarterly, date(2025, time.January, 10), date(2025, time.April, 10)},
		{"biannual", models.FrequencyBiannual, date(2025, time.January, 10), date(2025, time.July, 10)},
		{"annual", models.FrequencyAnnual, date(2025, time.February, 28), date(2026, time.February, 28)},
		{"once is inert", models.FrequencyOnce, date(2025, time.May, 1), date(2025, time.May, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDate(tt.from, tt.freq))
		})
	}
}

func TestNextDateClampsToEndOfMonth(t *testing.T) {
	// Jan 31 + 1 month lands on the last valid day of February.
	assert.Equal(t, date(2025, time.February, 28), NextDate(date(2025, time.January, 31), models.FrequencyMonthly))
	// Leap year keeps the 29th.
	assert.Equal(t, date(2024, time.February, 29), NextDate(date(2024, time.January, 31), models.FrequencyMonthly))
	// Oct 31 + 1 month -> Nov 30.
	assert.Equal(t, date(2025, time.November, 30), NextDate(date(2025, time.October, 31), models.FrequencyMonthly))
	// Year wrap.
	assert.Equal(t, date(2026, time.January, 15), NextDate(date(2025, time.December, 15), models.FrequencyMonthly))
	// Nov 30 + 3 months -> Feb 28.
	assert.Equal(t, date(2026, time.February, 28), NextDate(date(2025, time.November, 30), models.FrequencyQuarterly))
}

func TestExpandMonthlyWithinHorizon(t *testing.T) {
	d := monthlyDebit("2025-01-15")

	occurrences, err := Expand(d, date(2025, time.January, 1), date(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, occurrences, 4)
	assert.Equal(t, date(2025, time.January, 15), occurrences[0].Date)
	assert.Equal(t, date(2025, time.April, 15), occurrences[3].Date)
	for _, occ := range occurrences {
		assert.Equal(t, "deb-1", occ.DebitID)
		assert.Equal(t, "15.99", occ.Amount.Value)
	}
}

func TestExpandRollsForwardPastAnchors(t *testing.T) {
	// A stale anchor is not inert: the definition rolls into the horizon.
	d := monthlyDebit("2024-06-10")

	occurrences, err := Expand(d, date(2025, time.March, 1), date(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.Equal(t, date(2025, time.March, 10), occurrences[0].Date)
	assert.Equal(t, date(2025, time.April, 10), occurrences[1].Date)
}

func TestExpandOnce(t *testing.T) {
	d := monthlyDebit("2025-03-20")
	d.Frequency = models.FrequencyOnce

	t.Run("inside horizon", func(t *testing.T) {
		occurrences, err := Expand(d, date(2025, time.March, 1), date(2025, time.March, 31))
		require.NoError(t, err)
		require.Len(t, occurrences, 1)
		assert.Equal(t, date(2025, time.March, 20), occurrences[0].Date)
	})

	t.Run("outside horizon", func(t *testing.T) {
		occurrences, err := Expand(d, date(2025, time.April, 1), date(2025, time.June, 30))
		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})

	t.Run("completed never expands", func(t *testing.T) {
		paid := *d
		paid.Status = models.StatusCompleted
		occurrences, err := Expand(&paid, date(2025, time.January, 1), date(2030, time.December, 31))
		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})
}

func TestExpandPausedProducesNothing(t *testing.T) {
	d := monthlyDebit("2025-01-15")
	d.IsPaused = true

	occurrences, err := Expand(d, date(2025, time.January, 1), date(2025, time.December, 31))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestExpandBoundedAndMonotonic(t *testing.T) {
	d := monthlyDebit("2020-01-01")
	d.Frequency = models.FrequencyWeekly

	// A decade-long weekly horizon would produce ~520 dates; the cap wins.
	occurrences, err := Expand(d, date(2020, time.January, 1), date(2030, time.January, 1))
	require.NoError(t, err)
	assert.Len(t, occurrences, MaxOccurrences)
	for i := 1; i < len(occurrences); i++ {
		assert.False(t, occurrences[i].Date.Before(occurrences[i-1].Date),
			"occurrence %d precedes occurrence %d", i, i-1)
	}
}

func TestExpandEmptyCases(t *testing.T) {
	d := monthlyDebit("2025-06-15")

	t.Run("inverted horizon", func(t *testing.T) {
		occurrences, err := Expand(d, date(2025, time.July, 1), date(2025, time.June, 1))
		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})

	t.Run("anchor after horizon", func(t *testing.T) {
		occurrences, err := Expand(d, date(2025, time.January, 1), date(2025, time.May, 31))
		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})

	t.Run("invalid stored date", func(t *testing.T) {
		bad := *d
		bad.NextPaymentDate = "not-a-date"
		_, err := Expand(&bad, date(2025, time.January, 1), date(2025, time.May, 31))
		assert.Error(t, err)
	})
}

func TestExpandDefaultsCategory(t *testing.T) {
	d := monthlyDebit("2025-01-15")
	d.Category = ""

	occurrences, err := Expand(d, date(2025, time.January, 1), date(2025, time.January, 31))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, models.DefaultCategory, occurrences[0].Category)
}
