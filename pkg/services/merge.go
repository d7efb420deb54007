package services

import (
	"sort"

	"github.com/samber/lo"

	"github.com/previpay/previpay/pkg/models"
)

// Merge combines locally authored and bank-sourced debits into one view
// sorted by next payment date, stamping each entry's provenance. The inputs
// are not mutated; re-running with fresh bank data fully replaces the
// bank-tagged subset while leaving local entries as they were.
//
// No reconciliation is attempted across sources: a bank-observed debit and a
// manually entered record for the same real-world bill stay two entries.
func Merge(local, bank []*models.Debit) []*models.Debit {
	merged := make([]*models.Debit, 0, len(local)+len(bank))
	merged = append(merged, lo.Map(local, stampSource(models.SourceLocal))...)
	merged = append(merged, lo.Map(bank, stampSource(models.SourceBank))...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].NextPaymentDate < merged[j].NextPaymentDate
	})

	return merged
}

func stampSource(source models.Source) func(*models.Debit, int) *models.Debit {
	return func(debit *models.Debit, _ int) *models.Debit {
		stamped := *debit
		stamped.Source = source
		return &stamped
	}
}
