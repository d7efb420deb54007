// Manual harness for poking a running banking API without the REPL.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/previpay/previpay/pkg/config"
	"github.com/previpay/previpay/pkg/http/mkb"
)

func main() {
	lo.Must0(config.InitGlobalConfig("config.yaml"))

	baseURL := lo.Must(config.GetBankingBaseURL())
	email, password := lo.Must2(config.GetBankingCredentials())

	client := mkb.NewClient(baseURL)
	lo.Must0(client.Authenticate(context.Background(), email, password))

	balance := lo.Must(client.FetchBalance(context.Background()))
	fmt.Printf("Account %q: %s %s (as of %s)\n\n",
		balance.AccountName, balance.Amount.Value, balance.Amount.Currency,
		balance.AsOf.Format(time.DateOnly))

	debits := lo.Must(client.FetchUpcomingDebits(context.Background(), 60))

	fmt.Printf("%-15s %-30s %12s %-10s %-10s\n", "ID", "Company", "Amount", "Frequency", "Next")
	fmt.Println(strings.Repeat("-", 85))
	for _, d := range debits {
		fmt.Printf("%-15s %-30s %12s %-10s %-10s\n",
			d.ID,
			d.CompanyName[:min(30, len(d.CompanyName))],
			d.Amount.Value+" "+d.Amount.Currency,
			d.Frequency,
			d.NextPaymentDate)
	}
}
