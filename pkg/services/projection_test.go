package services

import (
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/previpay/previpay/pkg/models"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func projDebit(id, amount string, freq models.Frequency, date string) *models.Debit {
	return &models.Debit{
		ID:              id,
		CompanyName:     "Acme " + id,
		Amount:          models.NewAmount(amount),
		Category:        "Utilities",
		Frequency:       freq,
		NextPaymentDate: date,
		Status:          models.StatusActive,
	}
}

func TestProjectedBalanceMonthly(t *testing.T) {
	// One monthly debit of 50 anchored today over a 30 day horizon hits once.
	asOf := day("2025-05-01")
	debits := []*models.Debit{projDebit("d1", "50.00", models.FrequencyMonthly, "2025-05-01")}

	projection, err := ProjectedBalance(models.NewAmount("1000.00"), debits, asOf, asOf.AddDate(0, 0, 30))
	require.NoError(t, err)

	assert.Equal(t, "950.00", projection.Balance.Value)
	assert.False(t, projection.IsNegative)
}

func TestProjectedBalanceIgnoresPaused(t *testing.T) {
	asOf := day("2025-05-01")
	paused := projDebit("d1", "50.00", models.FrequencyMonthly, "2025-05-01")
	paused.IsPaused = true

	projection, err := ProjectedBalance(models.NewAmount("1000.00"), []*models.Debit{paused}, asOf, asOf.AddDate(0, 0, 30))
	require.NoError(t, err)

	assert.Equal(t, "1000.00", projection.Balance.Value)
}

func TestProjectedBalancePauseDelta(t *testing.T) {
	// Pausing a definition changes the projection by exactly its
	// occurrences in the window, and nothing else.
	asOf := day("2025-05-01")
	target := asOf.AddDate(0, 0, 60)
	stable := projDebit("d1", "20.00", models.FrequencyMonthly, "2025-05-10")
	toggled := projDebit("d2", "15.00", models.FrequencyMonthly, "2025-05-05")

	active, err := ProjectedBalance(models.NewAmount("500.00"), []*models.Debit{stable, toggled}, asOf, target)
	require.NoError(t, err)

	toggled.IsPaused = true
	paused, err := ProjectedBalance(models.NewAmount("500.00"), []*models.Debit{stable, toggled}, asOf, target)
	require.NoError(t, err)

	// d2 occurs twice in 60 days (May 5, Jun 5): delta is exactly 30.
	assert.Equal(t, "435.00", active.Balance.Value)
	assert.Equal(t, "465.00", paused.Balance.Value)
}

func TestProjectedBalanceOnceOverdue(t *testing.T) {
	// A once debit dated inside the window contributes; a completed one
	// never does again.
	asOf := day("2025-05-01")
	once := projDebit("d1", "200.00", models.FrequencyOnce, "2025-05-02")

	projection, err := ProjectedBalance(models.NewAmount("1000.00"), []*models.Debit{once}, asOf, asOf.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, "800.00", projection.Balance.Value)

	once.Status = models.StatusCompleted
	projection, err = ProjectedBalance(models.NewAmount("1000.00"), []*models.Debit{once}, asOf, asOf.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", projection.Balance.Value)
}

func TestProjectedBalanceCanGoNegative(t *testing.T) {
	asOf := day("2025-05-01")
	debits := []*models.Debit{projDebit("d1", "300.00", models.FrequencyWeekly, "2025-05-01")}

	projection, err := ProjectedBalance(models.NewAmount("1000.00"), debits, asOf, asOf.AddDate(0, 0, 30))
	require.NoError(t, err)

	// Five weekly hits of 300 in 30 days.
	assert.Equal(t, "-500.00", projection.Balance.Value)
	assert.True(t, projection.IsNegative)
}

func TestUrgentOccurrencesBankSourced(t *testing.T) {
	// A synced bank debit due in two days is the only urgent entry.
	asOf := day("2025-05-01")
	bank := projDebit("bank_1", "30.00", models.FrequencyOnce, "2025-05-03")
	bank.Source = models.SourceBank
	far := projDebit("d2", "99.00", models.FrequencyOnce, "2025-05-20")
	far.Source = models.SourceLocal

	urgent, err := UrgentOccurrences([]*models.Debit{far, bank}, asOf, UrgentWindowDays)
	require.NoError(t, err)

	require.Len(t, urgent, 1)
	assert.Equal(t, "bank_1", urgent[0].DebitID)
	assert.Equal(t, models.SourceBank, urgent[0].Source)
	assert.Equal(t, day("2025-05-03"), urgent[0].Date)
}

func TestUrgentOccurrencesSortedAndBounded(t *testing.T) {
	asOf := day("2025-05-01")
	debits := []*models.Debit{
		projDebit("d1", "10.00", models.FrequencyOnce, "2025-05-04"),
		projDebit("d2", "10.00", models.FrequencyOnce, "2025-05-02"),
		projDebit("d3", "10.00", models.FrequencyOnce, "2025-05-05"),
	}

	urgent, err := UrgentOccurrences(debits, asOf, UrgentWindowDays)
	require.NoError(t, err)

	require.Len(t, urgent, 2)
	assert.Equal(t, "d2", urgent[0].DebitID)
	assert.Equal(t, "d1", urgent[1].DebitID)
}

func TestMonthlyStatistics(t *testing.T) {
	debits := []*models.Debit{
		projDebit("d1", "50.00", models.FrequencyMonthly, "2025-05-10"),
		projDebit("d2", "20.00", models.FrequencyWeekly, "2025-05-01"),
		projDebit("d3", "99.00", models.FrequencyOnce, "2025-06-15"),
	}
	debits[1].Category = "Subscriptions"

	stats, err := MonthlyStatistics(debits, time.May, 2025)
	require.NoError(t, err)

	// d1 once, d2 on May 1/8/15/22/29, d3 outside the month.
	assert.Equal(t, 6, stats.Count)
	assert.Equal(t, "150.00", stats.TotalAmount.Value)
	assert.Equal(t, "50.00", stats.Categories["Utilities"].Value)
	assert.Equal(t, "100.00", stats.Categories["Subscriptions"].Value)
}

func TestYearStatisticsIsSumOfMonths(t *testing.T) {
	debits := []*models.Debit{
		projDebit("d1", "50.00", models.FrequencyMonthly, "2025-01-31"),
		projDebit("d2", "12.50", models.FrequencyBiweekly, "2025-01-06"),
		projDebit("d3", "300.00", models.FrequencyQuarterly, "2025-02-15"),
	}

	year, err := YearStatistics(debits, 2025)
	require.NoError(t, err)

	var monthCount int
	monthTotal := money.New(0, models.DefaultCurrency)
	for month := time.January; month <= time.December; month++ {
		stats, err := MonthlyStatistics(debits, month, 2025)
		require.NoError(t, err)
		monthCount += stats.Count
		monthTotal, err = monthTotal.Add(stats.TotalAmount.ToMoney())
		require.NoError(t, err)
	}

	assert.Equal(t, monthCount, year.Count)
	assert.Equal(t, monthTotal.AsMajorUnits(), year.TotalAmount.ToMoney().AsMajorUnits())
}

func TestBalanceAfterUpcoming(t *testing.T) {
	asOf := day("2025-05-01")
	debits := []*models.Debit{
		projDebit("d1", "400.00", models.FrequencyOnce, "2025-05-03"),
		projDebit("d2", "250.00", models.FrequencyOnce, "2025-05-10"),
	}

	summary, err := BalanceAfterUpcoming(models.NewAmount("500.00"), debits, asOf, 30)
	require.NoError(t, err)

	assert.Equal(t, "500.00", summary.CurrentBalance.Value)
	assert.Equal(t, "650.00", summary.TotalDebits.Value)
	assert.Equal(t, "-150.00", summary.BalanceAfter.Value)
	assert.True(t, summary.IsNegative)
	assert.Equal(t, 2, summary.Count)
}

func TestGroupByCategory(t *testing.T) {
	a := projDebit("d1", "10.00", models.FrequencyMonthly, "2025-05-01")
	b := projDebit("d2", "10.00", models.FrequencyMonthly, "2025-05-02")
	b.Category = "Subscriptions"
	paused := projDebit("d3", "10.00", models.FrequencyMonthly, "2025-05-03")
	paused.IsPaused = true

	groups := GroupByCategory([]*models.Debit{a, b, paused})

	assert.Len(t, groups["Utilities"], 1)
	assert.Len(t, groups["Subscriptions"], 1)
	assert.Len(t, groups, 2)
}
