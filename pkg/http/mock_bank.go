package http

import (
	"context"

	"github.com/previpay/previpay/pkg/models"
)

// MockBankClient is an in-memory BankClient for testing
type MockBankClient struct {
	Connected bool
	Balance   *models.BalanceSnapshot
	Debits    []*models.Debit

	AuthenticateErr error
	FetchBalanceErr error
	FetchDebitsErr  error

	// SyncCalls counts FetchUpcomingDebits invocations
	SyncCalls int
}

func (m *MockBankClient) Authenticate(ctx context.Context, email, password string) error {
	if m.AuthenticateErr != nil {
		return m.AuthenticateErr
	}
	m.Connected = true
	return nil
}

func (m *MockBankClient) IsConnected() bool {
	return m.Connected
}

func (m *MockBankClient) Disconnect() error {
	m.Connected = false
	return nil
}

func (m *MockBankClient) FetchBalance(ctx context.Context) (*models.BalanceSnapshot, error) {
	if m.FetchBalanceErr != nil {
		return nil, m.FetchBalanceErr
	}
	return m.Balance, nil
}

func (m *MockBankClient) FetchUpcomingDebits(ctx context.Context, daysAhead int) ([]*models.Debit, error) {
	m.SyncCalls++
	if m.FetchDebitsErr != nil {
		return nil, m.FetchDebitsErr
	}
	return m.Debits, nil
}
