package http

import (
	"context"

	"github.com/previpay/previpay/pkg/http/mkb"
	"github.com/previpay/previpay/pkg/models"
)

// BankClient is the remote banking data source: an authenticated session
// that can report a balance and the upcoming debit schedule.
type BankClient interface {
	Authenticate(ctx context.Context, email, password string) error
	IsConnected() bool
	Disconnect() error
	FetchBalance(ctx context.Context) (*models.BalanceSnapshot, error)
	FetchUpcomingDebits(ctx context.Context, daysAhead int) ([]*models.Debit, error)
}

var (
	_ BankClient = &mkb.Client{}
	_ BankClient = &MockBankClient{}
)
