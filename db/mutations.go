package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/previpay/previpay/pkg/models"
	"github.com/previpay/previpay/pkg/recurrence"
)

// MarkAsPaid records a payment-history entry for the debit's current due
// date, then either advances the date by one frequency step or, for one-off
// debits, completes the definition. Paused debits are rejected outright.
func (db *DB) MarkAsPaid(id string) (*models.Debit, error) {
	debit, err := db.GetDebitByID(id)
	if err != nil {
		return nil, err
	}
	if debit == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if debit.IsPaused {
		return nil, fmt.Errorf("%w: %s", ErrDebitPaused, id)
	}

	if err := db.InsertPaymentRecord(&models.PaymentRecord{
		DebitID:     debit.ID,
		Amount:      debit.Amount,
		PaymentDate: debit.NextPaymentDate,
		Status:      "completed",
	}); err != nil {
		return nil, err
	}

	if debit.Frequency == models.FrequencyOnce {
		debit.Status = models.StatusCompleted
	} else {
		due, err := debit.NextDate()
		if err != nil {
			return nil, err
		}
		debit.NextPaymentDate = recurrence.NextDate(due, debit.Frequency).Format(time.DateOnly)
	}

	if err := db.UpdateDebit(debit); err != nil {
		return nil, err
	}
	return debit, nil
}

// TogglePause flips the paused flag. Status and the payment date are left
// untouched.
func (db *DB) TogglePause(id string) (*models.Debit, error) {
	debit, err := db.GetDebitByID(id)
	if err != nil {
		return nil, err
	}
	if debit == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	debit.IsPaused = !debit.IsPaused
	if err := db.UpdateDebit(debit); err != nil {
		return nil, err
	}
	return debit, nil
}

// UpdateBalance overwrites the user's stored balance. It is a plain stored
// value, not derived from payment history.
func (db *DB) UpdateBalance(userID string, balance models.Amount) error {
	query := `
	INSERT INTO users (id, balance, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		balance = excluded.balance,
		updated_at = CURRENT_TIMESTAMP
	`

	_, err := db.Exec(query, userID, balance.Value)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	return nil
}

// GetBalance returns the stored balance, creating the user row with a zero
// balance the first time it is asked for.
func (db *DB) GetBalance(userID string) (models.Amount, error) {
	var value string
	err := db.QueryRow(`SELECT balance FROM users WHERE id = ?`, userID).Scan(&value)
	if err == sql.ErrNoRows {
		if insertErr := db.UpdateBalance(userID, models.NewAmount("0")); insertErr != nil {
			return models.Amount{}, insertErr
		}
		return models.NewAmount("0"), nil
	} else if err != nil {
		return models.Amount{}, fmt.Errorf("failed to get balance: %w", err)
	}

	return models.NewAmount(value), nil
}
