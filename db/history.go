package db

import (
	"fmt"

	"github.com/previpay/previpay/pkg/models"
)

// InsertPaymentRecord appends a row to the payment history.
func (db *DB) InsertPaymentRecord(record *models.PaymentRecord) error {
	query := `
	INSERT INTO payment_history (debit_id, amount_value, amount_currency, payment_date, status)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(
		query,
		record.DebitID,
		record.Amount.Value,
		record.Amount.Currency,
		record.PaymentDate,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment record: %w", err)
	}

	return nil
}

// GetPaymentHistory lists recorded payments, most recent first. An empty
// debitID lists every debit's history.
func (db *DB) GetPaymentHistory(debitID string) ([]*models.PaymentRecord, error) {
	query := `
	SELECT id, debit_id, amount_value, amount_currency, payment_date, status
	FROM payment_history
	`
	args := []any{}
	if debitID != "" {
		query += `WHERE debit_id = ?
	`
		args = append(args, debitID)
	}
	query += `ORDER BY payment_date DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment history: %w", err)
	}
	defer rows.Close()

	var records []*models.PaymentRecord
	for rows.Next() {
		record := &models.PaymentRecord{}
		err := rows.Scan(
			&record.ID,
			&record.DebitID,
			&record.Amount.Value,
			&record.Amount.Currency,
			&record.PaymentDate,
			&record.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment history: %w", err)
	}

	return records, nil
}
