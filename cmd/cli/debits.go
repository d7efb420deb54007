package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/previpay/previpay/pkg/models"
	"github.com/previpay/previpay/pkg/services"
	"github.com/previpay/previpay/pkg/utils"
)

func (r *replState) listDebits(input string) {
	parts := strings.Fields(input)
	if len(parts) >= 2 && parts[1] == "category" {
		r.listDebitsByCategory()
		return
	}

	debits := r.orch.Debits()
	if len(debits) == 0 {
		fmt.Println("No debits found")
		return
	}

	fmt.Printf("Found %d debits:\n\n", len(debits))
	printDebitTable(debits)
}

func (r *replState) listDebitsByCategory() {
	groups := services.GroupByCategory(r.orch.Debits())
	if len(groups) == 0 {
		fmt.Println("No debits found")
		return
	}

	for category, debits := range groups {
		fmt.Printf("%s:\n", utils.CategoryLabel(category))
		printDebitTable(debits)
		fmt.Println()
	}
}

func printDebitTable(debits []*models.Debit) {
	fmt.Printf("%-36s %-25s %12s %-12s %-10s %-12s %-8s\n",
		"ID", "Company", "Amount", "Frequency", "Next", "Category", "Source")
	fmt.Println(strings.Repeat("-", 120))
	for _, d := range debits {
		state := ""
		if d.IsPaused {
			state = " (paused)"
		} else if d.Status == models.StatusCompleted {
			state = " (done)"
		}
		fmt.Printf("%-36s %-25s %12s %-12s %-10s %-12s %-8s%s\n",
			d.ID,
			d.CompanyName[:min(25, len(d.CompanyName))],
			d.Amount.Value+" "+d.Amount.Currency,
			d.Frequency,
			d.NextPaymentDate,
			d.Category[:min(12, len(d.Category))],
			d.Source,
			state)
	}
}

func (r *replState) showDebit(input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		fmt.Println("Invalid show command format.")
		fmt.Println("Usage: show <id>")
		return
	}

	for _, d := range r.orch.Debits() {
		if d.ID == parts[1] {
			d.PrintFormatted()
			return
		}
	}
	fmt.Printf("No debit with id %s\n", parts[1])
}

func (r *replState) addDebit(input string) {
	// Format: add <company> <amount> <frequency> <date> [<category>]
	parts := splitQuoted(input)
	if len(parts) < 5 {
		fmt.Println("Invalid add command format.")
		fmt.Println("Usage: add <company> <amount> <frequency> <date> [<category>]")
		fmt.Println("Example: add \"Electric Co\" 54.30 monthly 2025-06-01 Utilities")
		return
	}

	frequency, err := models.ParseFrequency(parts[3])
	if err != nil {
		log.Error().Err(err).Msg("Invalid frequency")
		return
	}

	debit := &models.Debit{
		CompanyName:     parts[1],
		Amount:          models.NewAmount(parts[2]),
		Frequency:       frequency,
		NextPaymentDate: parts[4],
	}
	if len(parts) >= 6 {
		debit.Category = parts[5]
	}

	if result := r.orch.AddDebit(debit); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error adding debit")
		return
	}

	log.Info().Str("debit", debit.ID).Msg("Debit added successfully")
}

func (r *replState) updateDebit(input string) {
	// Format: update <id> <field> <value>
	parts := splitQuoted(input)
	if len(parts) < 4 {
		fmt.Println("Invalid update command format.")
		fmt.Println("Usage: update <id> <field> <value>")
		fmt.Println("Fields: company, amount, category, frequency, date, description")
		return
	}

	id, field, value := parts[1], parts[2], parts[3]
	debit := findLocalDebit(r.orch, id)
	if debit == nil {
		fmt.Printf("No local debit with id %s\n", id)
		return
	}

	switch field {
	case "company":
		debit.CompanyName = value
	case "amount":
		debit.Amount = models.NewAmount(value)
	case "category":
		debit.Category = value
	case "frequency":
		frequency, err := models.ParseFrequency(value)
		if err != nil {
			log.Error().Err(err).Msg("Invalid frequency")
			return
		}
		debit.Frequency = frequency
	case "date":
		debit.NextPaymentDate = value
	case "description":
		debit.Description = value
	default:
		fmt.Println("Unknown field. Fields: company, amount, category, frequency, date, description")
		return
	}

	if result := r.orch.UpdateDebit(debit); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error updating debit")
		return
	}

	log.Info().Str("debit", id).Msg("Debit updated successfully")
}

// findLocalDebit returns a copy safe to mutate before an update.
func findLocalDebit(orch *services.Orchestrator, id string) *models.Debit {
	for _, d := range orch.LocalDebits() {
		if d.ID == id {
			clone := *d
			return &clone
		}
	}
	return nil
}

func (r *replState) removeDebit(input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		fmt.Println("Invalid remove command format.")
		fmt.Println("Usage: remove <id>")
		return
	}

	if result := r.orch.DeleteDebit(parts[1]); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error removing debit")
		return
	}

	log.Info().Str("debit", parts[1]).Msg("Debit removed successfully")
}

func (r *replState) markAsPaid(input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		fmt.Println("Invalid paid command format.")
		fmt.Println("Usage: paid <id>")
		return
	}

	if result := r.orch.MarkAsPaid(parts[1]); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error marking debit as paid")
		return
	}

	log.Info().Str("debit", parts[1]).Msg("Payment recorded")
}

func (r *replState) togglePause(input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		fmt.Println("Invalid pause command format.")
		fmt.Println("Usage: pause <id>")
		return
	}

	if result := r.orch.TogglePause(parts[1]); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error toggling pause")
		return
	}

	log.Info().Str("debit", parts[1]).Msg("Pause state toggled")
}

func (r *replState) handleBalance(input string) {
	parts := strings.Fields(input)
	if len(parts) >= 3 && parts[1] == "set" {
		if result := r.orch.SetBalance(parts[2]); !result.Success {
			log.Error().Str("error", result.Error).Msg("Error setting balance")
			return
		}
		log.Info().Str("balance", parts[2]).Msg("Balance updated")
		return
	}

	balance := r.orch.CurrentBalance()
	fmt.Printf("Current balance: %s %s\n", balance.Value, balance.Currency)
	if snapshot := r.orch.BankBalance(); snapshot != nil {
		fmt.Printf("  from bank account %q as of %s\n",
			snapshot.AccountName, snapshot.AsOf.Format(time.DateOnly))
	}
}

func (r *replState) projectBalance(input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		fmt.Println("Invalid project command format.")
		fmt.Println("Usage: project <date>")
		fmt.Println("Example: project 2025-12-31")
		return
	}

	target, err := time.Parse(time.DateOnly, parts[1])
	if err != nil {
		fmt.Println("Invalid date, expected YYYY-MM-DD")
		return
	}

	projection, err := r.orch.ProjectedBalance(target)
	if err != nil {
		log.Error().Err(err).Msg("Error projecting balance")
		return
	}

	fmt.Printf("Projected balance on %s: %s %s\n",
		parts[1], projection.Balance.Value, projection.Balance.Currency)
	if projection.IsNegative {
		fmt.Println("Warning: the projected balance is negative")
	}
}

func (r *replState) upcomingSummary(input string) {
	parts := strings.Fields(input)
	days := 30
	if len(parts) >= 2 {
		parsed, err := strconv.Atoi(parts[1])
		if err != nil || parsed <= 0 {
			fmt.Println("Invalid day count, expected a positive number")
			return
		}
		days = parsed
	}

	summary, err := r.orch.UpcomingSummary(days)
	if err != nil {
		log.Error().Err(err).Msg("Error computing upcoming summary")
		return
	}

	fmt.Printf("Next %d days: %d payments totalling %s %s\n",
		days, summary.Count, summary.TotalDebits.Value, summary.TotalDebits.Currency)
	fmt.Printf("Balance after: %s %s\n", summary.BalanceAfter.Value, summary.BalanceAfter.Currency)
	if summary.IsNegative {
		fmt.Println("Warning: the balance will go negative")
	}
}

func (r *replState) listUrgent() {
	urgent, err := r.orch.Urgent()
	if err != nil {
		log.Error().Err(err).Msg("Error listing urgent debits")
		return
	}

	if len(urgent) == 0 {
		fmt.Println("Nothing due in the next few days")
		return
	}

	fmt.Printf("Due within %d days:\n\n", services.UrgentWindowDays)
	fmt.Printf("%-10s %-25s %12s %-8s\n", "Date", "Company", "Amount", "Source")
	fmt.Println(strings.Repeat("-", 60))
	for _, occ := range urgent {
		fmt.Printf("%-10s %-25s %12s %-8s\n",
			occ.Date.Format(time.DateOnly),
			occ.CompanyName[:min(25, len(occ.CompanyName))],
			occ.Amount.Value+" "+occ.Amount.Currency,
			occ.Source)
	}
}

func (r *replState) showStats(input string) {
	parts := strings.Fields(input)
	now := time.Now()

	var (
		stats *services.Statistics
		label string
		err   error
	)

	switch {
	case len(parts) >= 4 && parts[1] == "month":
		monthNum, convErr := strconv.Atoi(parts[2])
		yearNum, yearErr := strconv.Atoi(parts[3])
		if convErr != nil || yearErr != nil || monthNum < 1 || monthNum > 12 {
			fmt.Println("Usage: stats month <1-12> <year>")
			return
		}
		stats, err = r.orch.MonthStats(time.Month(monthNum), yearNum)
		label = fmt.Sprintf("%s %d", time.Month(monthNum), yearNum)
	case len(parts) >= 3 && parts[1] == "year":
		yearNum, convErr := strconv.Atoi(parts[2])
		if convErr != nil {
			fmt.Println("Usage: stats year <year>")
			return
		}
		stats, err = r.orch.YearStats(yearNum)
		label = parts[2]
	case len(parts) == 1:
		stats, err = r.orch.MonthStats(now.Month(), now.Year())
		label = fmt.Sprintf("%s %d", now.Month(), now.Year())
	default:
		fmt.Println("Usage: stats [month <m> <y> | year <y>]")
		return
	}

	if err != nil {
		log.Error().Err(err).Msg("Error computing statistics")
		return
	}

	fmt.Printf("Statistics for %s:\n", label)
	fmt.Printf("  Payments: %d\n", stats.Count)
	fmt.Printf("  Total:    %s %s\n", stats.TotalAmount.Value, stats.TotalAmount.Currency)
	if len(stats.Categories) > 0 {
		fmt.Println("  By category:")
		for category, amount := range stats.Categories {
			fmt.Printf("    %-15s %s %s\n", utils.CategoryLabel(category), amount.Value, amount.Currency)
		}
	}
}

func (r *replState) showHistory(input string) {
	parts := strings.Fields(input)
	debitID := ""
	if len(parts) >= 2 {
		debitID = parts[1]
	}

	records, err := r.orch.History(debitID)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching payment history")
		return
	}

	if len(records) == 0 {
		fmt.Println("No payments recorded")
		return
	}

	fmt.Printf("Found %d payments:\n\n", len(records))
	fmt.Printf("%-36s %12s %-10s %-10s\n", "Debit", "Amount", "Date", "Status")
	fmt.Println(strings.Repeat("-", 75))
	for _, record := range records {
		fmt.Printf("%-36s %12s %-10s %-10s\n",
			record.DebitID,
			record.Amount.Value+" "+record.Amount.Currency,
			record.PaymentDate,
			record.Status)
	}
}

// splitQuoted splits a command line on whitespace while keeping quoted
// segments together. Quotes are stripped from the result.
func splitQuoted(input string) []string {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
