package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/previpay/previpay/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a mutation targets an unknown debit.
	ErrNotFound = errors.New("debit not found")
	// ErrDebitPaused is returned when a paused debit is marked as paid.
	ErrDebitPaused = errors.New("debit is paused")
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Initialize creates the necessary tables if they don't exist
func (db *DB) Initialize() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS debits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company_name TEXT NOT NULL,
		amount_value TEXT NOT NULL,
		amount_currency TEXT NOT NULL,
		category TEXT,
		frequency TEXT NOT NULL,
		next_payment_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		is_paused INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS payment_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debit_id TEXT NOT NULL,
		amount_value TEXT NOT NULL,
		amount_currency TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// validateDebit rejects bad input before it reaches persistence.
func validateDebit(debit *models.Debit) error {
	if strings.TrimSpace(debit.CompanyName) == "" {
		return fmt.Errorf("company name must not be empty")
	}
	if _, err := models.ParsePositiveAmount(debit.Amount.Value); err != nil {
		return err
	}
	if _, err := models.ParseFrequency(string(debit.Frequency)); err != nil {
		return err
	}
	if _, err := debit.NextDate(); err != nil {
		return err
	}
	return nil
}

// SaveDebit inserts a new locally created debit.
func (db *DB) SaveDebit(userID string, debit *models.Debit) error {
	if err := validateDebit(debit); err != nil {
		return err
	}

	if debit.Category == "" {
		debit.Category = models.DefaultCategory
	}
	if debit.Status == "" {
		debit.Status = models.StatusActive
	}

	query := `
	INSERT INTO debits (
		id, user_id, company_name, amount_value, amount_currency,
		category, frequency, next_payment_date, status, is_paused, description
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(
		query,
		debit.ID,
		userID,
		strings.TrimSpace(debit.CompanyName),
		debit.Amount.Value,
		debit.Amount.Currency,
		debit.Category,
		debit.Frequency,
		debit.NextPaymentDate,
		debit.Status,
		debit.IsPaused,
		debit.Description,
	)

	if err != nil {
		return fmt.Errorf("failed to save debit: %w", err)
	}

	return nil
}

// UpdateDebit rewrites an existing debit's editable fields.
func (db *DB) UpdateDebit(debit *models.Debit) error {
	if err := validateDebit(debit); err != nil {
		return err
	}

	query := `
	UPDATE debits
	SET
		company_name = ?, amount_value = ?, amount_currency = ?, category = ?,
		frequency = ?, next_payment_date = ?, status = ?, is_paused = ?,
		description = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?
	`

	result, err := db.Exec(
		query,
		strings.TrimSpace(debit.CompanyName),
		debit.Amount.Value,
		debit.Amount.Currency,
		debit.Category,
		debit.Frequency,
		debit.NextPaymentDate,
		debit.Status,
		debit.IsPaused,
		debit.Description,
		debit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, debit.ID)
	}

	return nil
}

const debitColumns = `
	id, company_name, amount_value, amount_currency, category,
	frequency, next_payment_date, status, is_paused, description
`

// GetDebits retrieves all debits for a user, soonest payment first.
func (db *DB) GetDebits(userID string) ([]*models.Debit, error) {
	query := `
	SELECT ` + debitColumns + `
	FROM debits
	WHERE user_id = ?
	ORDER BY next_payment_date ASC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debits: %w", err)
	}
	defer rows.Close()

	var debits []*models.Debit
	for rows.Next() {
		debit := &models.Debit{}
		if err := scanDebit(rows, debit); err != nil {
			return nil, fmt.Errorf("failed to scan debit: %w", err)
		}
		debits = append(debits, debit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debits: %w", err)
	}

	return debits, nil
}

// GetDebitByID retrieves a single debit, or (nil, nil) when absent.
func (db *DB) GetDebitByID(id string) (*models.Debit, error) {
	query := `
	SELECT ` + debitColumns + `
	FROM debits
	WHERE id = ?
	LIMIT 1
	`

	debit := &models.Debit{}
	err := scanDebit(db.QueryRow(query, id), debit)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get debit: %w", err)
	}

	return debit, nil
}

// RemoveDebit permanently deletes a debit. There is no soft delete.
func (db *DB) RemoveDebit(id string) error {
	result, err := db.Exec(`DELETE FROM debits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove debit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebit(row rowScanner, debit *models.Debit) error {
	return row.Scan(
		&debit.ID,
		&debit.CompanyName,
		&debit.Amount.Value,
		&debit.Amount.Currency,
		&debit.Category,
		&debit.Frequency,
		&debit.NextPaymentDate,
		&debit.Status,
		&debit.IsPaused,
		&debit.Description,
	)
}
