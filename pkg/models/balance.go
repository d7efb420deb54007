package models

import "time"

// BalanceSnapshot is a point-in-time account balance.
type BalanceSnapshot struct {
	// Amount is the balance itself. It may be negative.
	Amount Amount
	// AsOf is when the balance was observed.
	AsOf time.Time
	// Source distinguishes the locally stored balance from a synced one.
	Source Source
	// AccountName is set for bank-sourced snapshots.
	AccountName string
}

// SyncStatus tracks the banking sync lifecycle.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncRunning SyncStatus = "syncing"
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// SyncState is the orchestrator's view of the banking connection.
type SyncState struct {
	Status   SyncStatus
	Error    string
	LastSync *time.Time
}
