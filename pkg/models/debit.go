package models

import (
	"fmt"
	"strings"
	"time"
)

// Frequency describes how often a debit repeats.
type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyBiannual  Frequency = "biannual"
	FrequencyAnnual    Frequency = "annual"
)

// ParseFrequency validates a user-supplied frequency string.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyOnce, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyBiannual, FrequencyAnnual:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

// IsRecurring reports whether the frequency produces more than one occurrence.
func (f Frequency) IsRecurring() bool {
	return f != FrequencyOnce
}

// Status of a debit definition. Only "once" debits ever complete; recurring
// ones stay active and roll their next payment date forward.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Source tags the provenance of a debit in the merged view. It is stamped at
// merge time and never persisted.
type Source string

const (
	SourceLocal Source = "local"
	SourceBank  Source = "bank"
)

// DefaultCategory is used whenever a debit has no category.
const DefaultCategory = "Other"

// Debit is a stored recurring-or-one-off payment obligation.
type Debit struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"companyName"`
	Amount          Amount    `json:"amount"`
	Category        string    `json:"category"`
	Frequency       Frequency `json:"frequency"`
	NextPaymentDate string    `json:"nextPaymentDate"` // YYYY-MM-DD
	Status          Status    `json:"status"`
	IsPaused        bool      `json:"isPaused"`
	Description     string    `json:"description"`

	// Source is assigned by the merger, not stored.
	Source Source `json:"source,omitempty"`
}

// NextDate parses the debit's next payment date.
func (d *Debit) NextDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, d.NextPaymentDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("debit %s has invalid date %q: %w", d.ID, d.NextPaymentDate, err)
	}
	return t, nil
}

// PrintFormatted prints the debit in a formatted way
func (d *Debit) PrintFormatted() {
	fmt.Printf("Debit Details:\n")
	fmt.Printf("	ID: %s\n", d.ID)
	fmt.Printf("	Company: %s\n", d.CompanyName)
	fmt.Printf("	Amount: %s %s\n", d.Amount.Value, d.Amount.Currency)
	fmt.Printf("	Category: %s\n", d.Category)
	fmt.Printf("	Frequency: %s\n", d.Frequency)
	fmt.Printf("	Next Payment: %s\n", d.NextPaymentDate)
	fmt.Printf("	Status: %s\n", d.Status)
	if d.IsPaused {
		fmt.Printf("	Paused: yes\n")
	}
	if d.Description != "" {
		fmt.Printf("	Description: %s\n", d.Description)
	}
	if d.Source != "" {
		fmt.Printf("	Source: %s\n", d.Source)
	}
}

// Occurrence is one concrete dated instance derived from a debit. It is
// recomputed on demand and never stored.
type Occurrence struct {
	DebitID     string
	CompanyName string
	Category    string
	Date        time.Time
	Amount      Amount
	Source      Source
}

// PaymentRecord is a payment_history row written when a debit is marked paid.
type PaymentRecord struct {
	ID          int64
	DebitID     string
	Amount      Amount
	PaymentDate string // YYYY-MM-DD
	Status      string
}
