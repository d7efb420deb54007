package db

import (
	"github.com/previpay/previpay/pkg/models"
)

// Store defines the interface for local persistence operations
type Store interface {
	Initialize() error
	Close() error
	GetDebits(userID string) ([]*models.Debit, error)
	GetDebitByID(id string) (*models.Debit, error)
	SaveDebit(userID string, debit *models.Debit) error
	UpdateDebit(debit *models.Debit) error
	RemoveDebit(id string) error
	MarkAsPaid(id string) (*models.Debit, error)
	TogglePause(id string) (*models.Debit, error)
	GetBalance(userID string) (models.Amount, error)
	UpdateBalance(userID string, balance models.Amount) error
	InsertPaymentRecord(record *models.PaymentRecord) error
	GetPaymentHistory(debitID string) ([]*models.PaymentRecord, error)
}

// Ensure DB implements Store
var _ Store = (*DB)(nil)

// Ensure MockDB implements Store
var _ Store = (*MockDB)(nil)
