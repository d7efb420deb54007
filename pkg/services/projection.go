package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/samber/lo"

	"github.com/previpay/previpay/pkg/models"
	"github.com/previpay/previpay/pkg/recurrence"
)

// UrgentWindowDays is the default lookahead for the "pay attention now" list.
const UrgentWindowDays = 3

// Projection is a projected balance. A negative outcome is flagged
// explicitly so callers can warn rather than inspect the raw number.
type Projection struct {
	Balance    models.Amount
	IsNegative bool
}

// ProjectedBalance deducts every qualifying occurrence between asOf and
// target (inclusive) from the starting balance. Paused and completed
// definitions contribute nothing; a recurring definition anchored in the
// past still rolls forward into the window.
func ProjectedBalance(starting models.Amount, debits []*models.Debit, asOf, target time.Time) (*Projection, error) {
	balance := starting.ToMoney()

	for _, debit := range debits {
		occurrences, err := recurrence.Expand(debit, asOf, target)
		if err != nil {
			return nil, err
		}
		for _, occ := range occurrences {
			balance, err = balance.Subtract(occ.Amount.ToMoney())
			if err != nil {
				return nil, fmt.Errorf("failed to deduct %s: %w", occ.CompanyName, err)
			}
		}
	}

	return &Projection{
		Balance:    amountFromMoney(balance),
		IsNegative: balance.IsNegative(),
	}, nil
}

// UrgentOccurrences returns every non-paused occurrence falling within
// windowDays of asOf, soonest first.
func UrgentOccurrences(debits []*models.Debit, asOf time.Time, windowDays int) ([]models.Occurrence, error) {
	end := asOf.AddDate(0, 0, windowDays)

	var urgent []models.Occurrence
	for _, debit := range debits {
		occurrences, err := recurrence.Expand(debit, asOf, end)
		if err != nil {
			return nil, err
		}
		urgent = append(urgent, occurrences...)
	}

	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].Date.Before(urgent[j].Date)
	})

	return urgent, nil
}

// Statistics aggregates the occurrences of one period.
type Statistics struct {
	TotalAmount models.Amount
	Count       int
	Categories  map[string]models.Amount
	Occurrences []models.Occurrence
}

// MonthlyStatistics sums the non-paused occurrences of one calendar month
// and buckets them by category. Month boundaries are inclusive on both
// sides, so summing twelve months never double counts a boundary date.
func MonthlyStatistics(debits []*models.Debit, month time.Month, year int) (*Statistics, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return statisticsForHorizon(debits, start, end)
}

// YearStatistics is the sum of the twelve monthly aggregates.
func YearStatistics(debits []*models.Debit, year int) (*Statistics, error) {
	total := money.New(0, models.DefaultCurrency)
	categories := make(map[string]models.Amount)
	stats := &Statistics{}

	for month := time.January; month <= time.December; month++ {
		monthStats, err := MonthlyStatistics(debits, month, year)
		if err != nil {
			return nil, err
		}

		var addErr error
		total, addErr = total.Add(monthStats.TotalAmount.ToMoney())
		if addErr != nil {
			return nil, addErr
		}
		for category, amount := range monthStats.Categories {
			if err := addToBucket(categories, category, amount); err != nil {
				return nil, err
			}
		}
		stats.Count += monthStats.Count
		stats.Occurrences = append(stats.Occurrences, monthStats.Occurrences...)
	}

	stats.TotalAmount = amountFromMoney(total)
	stats.Categories = categories
	return stats, nil
}

func statisticsForHorizon(debits []*models.Debit, start, end time.Time) (*Statistics, error) {
	total := money.New(0, models.DefaultCurrency)
	categories := make(map[string]models.Amount)
	stats := &Statistics{}

	for _, debit := range debits {
		occurrences, err := recurrence.Expand(debit, start, end)
		if err != nil {
			return nil, err
		}
		for _, occ := range occurrences {
			total, err = total.Add(occ.Amount.ToMoney())
			if err != nil {
				return nil, fmt.Errorf("failed to total %s: %w", occ.CompanyName, err)
			}
			if err := addToBucket(categories, occ.Category, occ.Amount); err != nil {
				return nil, err
			}
			stats.Count++
			stats.Occurrences = append(stats.Occurrences, occ)
		}
	}

	stats.TotalAmount = amountFromMoney(total)
	stats.Categories = categories
	return stats, nil
}

func addToBucket(buckets map[string]models.Amount, category string, amount models.Amount) error {
	existing, ok := buckets[category]
	if !ok {
		buckets[category] = amount
		return nil
	}
	sum, err := existing.ToMoney().Add(amount.ToMoney())
	if err != nil {
		return fmt.Errorf("failed to bucket category %s: %w", category, err)
	}
	buckets[category] = amountFromMoney(sum)
	return nil
}

// UpcomingSummary is the balance left once every upcoming debit has gone out.
type UpcomingSummary struct {
	CurrentBalance models.Amount
	TotalDebits    models.Amount
	BalanceAfter   models.Amount
	IsNegative     bool
	Count          int
}

// BalanceAfterUpcoming projects the balance over the next horizonDays and
// reports the total that will leave the account.
func BalanceAfterUpcoming(current models.Amount, debits []*models.Debit, asOf time.Time, horizonDays int) (*UpcomingSummary, error) {
	target := asOf.AddDate(0, 0, horizonDays)
	projection, err := ProjectedBalance(current, debits, asOf, target)
	if err != nil {
		return nil, err
	}

	totalOut, err := current.ToMoney().Subtract(projection.Balance.ToMoney())
	if err != nil {
		return nil, err
	}

	var count int
	for _, debit := range debits {
		occurrences, err := recurrence.Expand(debit, asOf, target)
		if err != nil {
			return nil, err
		}
		count += len(occurrences)
	}

	return &UpcomingSummary{
		CurrentBalance: current,
		TotalDebits:    amountFromMoney(totalOut),
		BalanceAfter:   projection.Balance,
		IsNegative:     projection.IsNegative,
		Count:          count,
	}, nil
}

// GroupByCategory buckets non-paused debits by category for listing views.
func GroupByCategory(debits []*models.Debit) map[string][]*models.Debit {
	active := lo.Filter(debits, func(debit *models.Debit, _ int) bool {
		return !debit.IsPaused
	})
	return lo.GroupBy(active, func(debit *models.Debit) string {
		if debit.Category == "" {
			return models.DefaultCategory
		}
		return debit.Category
	})
}

func amountFromMoney(m *money.Money) models.Amount {
	fraction := m.Currency().Fraction
	value := strconv.FormatFloat(m.AsMajorUnits(), 'f', fraction, 64)
	return models.Amount{Value: value, Currency: m.Currency().Code}
}
