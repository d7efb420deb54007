package db

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/previpay/previpay/pkg/models"
	"github.com/previpay/previpay/pkg/recurrence"
)

// MockDB is a mock implementation of the store for testing
type MockDB struct {
	// Mock data storage
	Debits   map[string]*models.Debit
	Balances map[string]models.Amount
	History  []*models.PaymentRecord

	// Error values to return
	GetDebitsErr     error
	GetDebitByIDErr  error
	SaveDebitErr     error
	UpdateDebitErr   error
	RemoveDebitErr   error
	MarkAsPaidErr    error
	TogglePauseErr   error
	GetBalanceErr    error
	UpdateBalanceErr error
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		Debits:   make(map[string]*models.Debit),
		Balances: make(map[string]models.Amount),
	}
}

// Initialize is a no-op for the mock
func (m *MockDB) Initialize() error { return nil }

// Close is a no-op for the mock
func (m *MockDB) Close() error { return nil }

// GetDebits returns all debits sorted by next payment date
func (m *MockDB) GetDebits(userID string) ([]*models.Debit, error) {
	if m.GetDebitsErr != nil {
		return nil, m.GetDebitsErr
	}

	debits := make([]*models.Debit, 0, len(m.Debits))
	for _, debit := range m.Debits {
		debits = append(debits, debit)
	}
	sort.Slice(debits, func(i, j int) bool {
		return debits[i].NextPaymentDate < debits[j].NextPaymentDate
	})

	return debits, nil
}

// GetDebitByID returns a debit by its id, or (nil, nil) when absent
func (m *MockDB) GetDebitByID(id string) (*models.Debit, error) {
	if m.GetDebitByIDErr != nil {
		return nil, m.GetDebitByIDErr
	}

	debit, ok := m.Debits[id]
	if !ok {
		return nil, nil
	}

	return debit, nil
}

// SaveDebit saves a debit to the mock database
func (m *MockDB) SaveDebit(userID string, debit *models.Debit) error {
	if m.SaveDebitErr != nil {
		return m.SaveDebitErr
	}
	if strings.TrimSpace(debit.CompanyName) == "" {
		return fmt.Errorf("company name must not be empty")
	}
	if _, err := models.ParsePositiveAmount(debit.Amount.Value); err != nil {
		return err
	}

	if debit.Category == "" {
		debit.Category = models.DefaultCategory
	}
	if debit.Status == "" {
		debit.Status = models.StatusActive
	}
	m.Debits[debit.ID] = debit
	return nil
}

// UpdateDebit updates a debit in the mock database
func (m *MockDB) UpdateDebit(debit *models.Debit) error {
	if m.UpdateDebitErr != nil {
		return m.UpdateDebitErr
	}

	if _, ok := m.Debits[debit.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, debit.ID)
	}

	m.Debits[debit.ID] = debit
	return nil
}

// RemoveDebit removes a debit from the mock database
func (m *MockDB) RemoveDebit(id string) error {
	if m.RemoveDebitErr != nil {
		return m.RemoveDebitErr
	}

	if _, ok := m.Debits[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(m.Debits, id)
	return nil
}

// MarkAsPaid mirrors the real store's recurrence-aware mutation
func (m *MockDB) MarkAsPaid(id string) (*models.Debit, error) {
	if m.MarkAsPaidErr != nil {
		return nil, m.MarkAsPaidErr
	}

	debit, ok := m.Debits[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if debit.IsPaused {
		return nil, fmt.Errorf("%w: %s", ErrDebitPaused, id)
	}

	m.History = append(m.History, &models.PaymentRecord{
		DebitID:     debit.ID,
		Amount:      debit.Amount,
		PaymentDate: debit.NextPaymentDate,
		Status:      "completed",
	})

	if debit.Frequency == models.FrequencyOnce {
		debit.Status = models.StatusCompleted
	} else {
		due, err := debit.NextDate()
		if err != nil {
			return nil, err
		}
		debit.NextPaymentDate = recurrence.NextDate(due, debit.Frequency).Format(time.DateOnly)
	}

	return debit, nil
}

// TogglePause flips the paused flag
func (m *MockDB) TogglePause(id string) (*models.Debit, error) {
	if m.TogglePauseErr != nil {
		return nil, m.TogglePauseErr
	}

	debit, ok := m.Debits[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	debit.IsPaused = !debit.IsPaused
	return debit, nil
}

// GetBalance returns the stored balance, defaulting to zero
func (m *MockDB) GetBalance(userID string) (models.Amount, error) {
	if m.GetBalanceErr != nil {
		return models.Amount{}, m.GetBalanceErr
	}

	balance, ok := m.Balances[userID]
	if !ok {
		return models.NewAmount("0"), nil
	}
	return balance, nil
}

// UpdateBalance overwrites the stored balance
func (m *MockDB) UpdateBalance(userID string, balance models.Amount) error {
	if m.UpdateBalanceErr != nil {
		return m.UpdateBalanceErr
	}

	m.Balances[userID] = balance
	return nil
}

// InsertPaymentRecord appends to the in-memory history
func (m *MockDB) InsertPaymentRecord(record *models.PaymentRecord) error {
	m.History = append(m.History, record)
	return nil
}

// GetPaymentHistory lists recorded payments
func (m *MockDB) GetPaymentHistory(debitID string) ([]*models.PaymentRecord, error) {
	if debitID == "" {
		return m.History, nil
	}
	var records []*models.PaymentRecord
	for _, record := range m.History {
		if record.DebitID == debitID {
			records = append(records, record)
		}
	}
	return records, nil
}
