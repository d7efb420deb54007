package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/previpay/previpay/db"
	bankhttp "github.com/previpay/previpay/pkg/http"
	"github.com/previpay/previpay/pkg/http/mkb"
	"github.com/previpay/previpay/pkg/models"
)

// SyncDaysAhead is how far into the future bank debits are fetched.
const SyncDaysAhead = 60

// ErrSyncInProgress is returned when a sync is requested while one is
// already running. Overlapping syncs would race on the bank debit cache.
var ErrSyncInProgress = errors.New("a bank sync is already in progress")

// Result is the uniform outcome of a mutation. Failures are data, not
// panics: nothing an adapter returns escapes the orchestrator as an
// exception.
type Result struct {
	Success bool
	Error   string
}

func resultOf(err error) Result {
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true}
}

// Orchestrator owns the in-memory session state: local debits, bank debits,
// the merged view, balances, and the sync lifecycle. It is created on login
// and torn down on logout; nothing else mutates its state.
type Orchestrator struct {
	store  db.Store
	bank   bankhttp.BankClient
	userID string

	mu           sync.Mutex
	localDebits  []*models.Debit
	bankDebits   []*models.Debit
	merged       []*models.Debit
	localBalance models.Amount
	bankBalance  *models.BalanceSnapshot
	syncState    models.SyncState
	syncing      bool

	// now is swappable for tests; everything date-sensitive goes through it.
	now func() time.Time
}

// NewOrchestrator wires the store and bank client for one user session.
func NewOrchestrator(store db.Store, bank bankhttp.BankClient, userID string) *Orchestrator {
	return &Orchestrator{
		store:     store,
		bank:      bank,
		userID:    userID,
		syncState: models.SyncState{Status: models.SyncIdle},
		now:       time.Now,
	}
}

// Start loads local state and, when a saved bank session exists, syncs.
// A failed sync never blocks local-only use.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.reloadLocal(); err != nil {
		return err
	}

	if o.bank.IsConnected() {
		log.Info().Msg("Bank session found, syncing")
		if result := o.Sync(ctx); !result.Success {
			log.Warn().Str("error", result.Error).Msg("Initial bank sync failed")
		}
	}
	return nil
}

// Refresh reloads local debits and re-syncs bank data if connected.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if err := o.reloadLocal(); err != nil {
		return err
	}
	if o.bank.IsConnected() {
		if result := o.Sync(ctx); !result.Success {
			log.Warn().Str("error", result.Error).Msg("Bank refresh failed")
		}
	}
	return nil
}

// reloadLocal re-reads debits and balance from the store, then recomputes
// the merged view. On storage failure the previous in-memory state stays.
func (o *Orchestrator) reloadLocal() error {
	debits, err := o.store.GetDebits(o.userID)
	if err != nil {
		return fmt.Errorf("failed to load debits: %w", err)
	}
	balance, err := o.store.GetBalance(o.userID)
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.localDebits = debits
	o.localBalance = balance
	o.merged = Merge(o.localDebits, o.bankDebits)
	return nil
}

// Debits returns the unified view: merged local+bank when bank data is
// present, local-only otherwise. Callers never need to know which.
func (o *Orchestrator) Debits() []*models.Debit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.merged
}

// LocalDebits returns only the locally stored definitions.
func (o *Orchestrator) LocalDebits() []*models.Debit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.localDebits
}

// BankDebits returns only the last synced bank definitions.
func (o *Orchestrator) BankDebits() []*models.Debit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bankDebits
}

// CurrentBalance prefers the synced bank balance over the stored one.
func (o *Orchestrator) CurrentBalance() models.Amount {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bankBalance != nil {
		return o.bankBalance.Amount
	}
	return o.localBalance
}

// BankBalance returns the last synced snapshot, or nil when never synced.
func (o *Orchestrator) BankBalance() *models.BalanceSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bankBalance
}

// SyncState reports the banking sync lifecycle.
func (o *Orchestrator) SyncState() models.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.syncState
}

// IsBankConnected reports whether a bank session is active.
func (o *Orchestrator) IsBankConnected() bool {
	return o.bank.IsConnected()
}

// ConnectBank authenticates against the banking API and syncs immediately.
func (o *Orchestrator) ConnectBank(ctx context.Context, email, password string) Result {
	if err := o.bank.Authenticate(ctx, email, password); err != nil {
		o.setSyncError(err)
		return resultOf(err)
	}
	return o.Sync(ctx)
}

// DisconnectBank drops the session and every bank-sourced piece of state.
func (o *Orchestrator) DisconnectBank() Result {
	if err := o.bank.Disconnect(); err != nil {
		return resultOf(err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.bankDebits = nil
	o.bankBalance = nil
	o.merged = Merge(o.localDebits, nil)
	o.syncState = models.SyncState{Status: models.SyncIdle}
	return resultOf(nil)
}

// Sync fetches the bank balance and upcoming debits, fully replacing the
// previously cached bank-sourced set. Syncs are serialized: a second call
// while one is in flight is a caller error.
func (o *Orchestrator) Sync(ctx context.Context) Result {
	if !o.bank.IsConnected() {
		err := errors.New("not connected to bank")
		o.setSyncError(err)
		return resultOf(err)
	}

	o.mu.Lock()
	if o.syncing {
		o.mu.Unlock()
		return resultOf(ErrSyncInProgress)
	}
	o.syncing = true
	o.syncState = models.SyncState{Status: models.SyncRunning, LastSync: o.syncState.LastSync}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.syncing = false
		o.mu.Unlock()
	}()

	snapshot, err := o.bank.FetchBalance(ctx)
	if err != nil {
		o.setSyncError(err)
		return resultOf(err)
	}

	debits, err := o.bank.FetchUpcomingDebits(ctx, SyncDaysAhead)
	if err != nil {
		o.setSyncError(err)
		return resultOf(err)
	}

	now := o.now()
	o.mu.Lock()
	o.bankBalance = snapshot
	o.bankDebits = debits
	o.merged = Merge(o.localDebits, o.bankDebits)
	o.syncState = models.SyncState{Status: models.SyncSuccess, LastSync: &now}
	o.mu.Unlock()

	log.Info().Int("debits", len(debits)).Msg("Bank sync complete")
	return resultOf(nil)
}

// setSyncError records a failed sync without touching previously synced
// data. An expired session additionally reads as disconnected so the
// presentation layer can ask the user to log in again.
func (o *Orchestrator) setSyncError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.syncState = models.SyncState{
		Status:   models.SyncError,
		Error:    err.Error(),
		LastSync: o.syncState.LastSync,
	}
	if errors.Is(err, mkb.ErrUnauthorized) {
		log.Warn().Msg("Bank session expired, reconnection required")
	}
}

// AddDebit validates and stores a new local debit.
func (o *Orchestrator) AddDebit(debit *models.Debit) Result {
	if debit.ID == "" {
		debit.ID = uuid.NewString()
	}
	if err := o.store.SaveDebit(o.userID, debit); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// UpdateDebit rewrites an existing local debit.
func (o *Orchestrator) UpdateDebit(debit *models.Debit) Result {
	if err := o.store.UpdateDebit(debit); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// DeleteDebit permanently removes a local debit.
func (o *Orchestrator) DeleteDebit(id string) Result {
	if err := o.store.RemoveDebit(id); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// MarkAsPaid records the payment and advances or completes the definition.
func (o *Orchestrator) MarkAsPaid(id string) Result {
	if _, err := o.store.MarkAsPaid(id); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// TogglePause flips a local debit's paused flag.
func (o *Orchestrator) TogglePause(id string) Result {
	if _, err := o.store.TogglePause(id); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// SetBalance overwrites the locally stored balance.
func (o *Orchestrator) SetBalance(value string) Result {
	amount, err := models.ParseSignedAmount(value)
	if err != nil {
		return resultOf(fmt.Errorf("invalid balance %q", value))
	}
	if err := o.store.UpdateBalance(o.userID, amount); err != nil {
		return resultOf(err)
	}
	return resultOf(o.reloadLocal())
}

// History lists recorded payments, newest first. An empty id lists all.
func (o *Orchestrator) History(debitID string) ([]*models.PaymentRecord, error) {
	return o.store.GetPaymentHistory(debitID)
}

func (o *Orchestrator) today() time.Time {
	now := o.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ProjectedBalance projects the current balance out to target.
func (o *Orchestrator) ProjectedBalance(target time.Time) (*Projection, error) {
	return ProjectedBalance(o.CurrentBalance(), o.Debits(), o.today(), target)
}

// Urgent lists occurrences due within the default urgency window.
func (o *Orchestrator) Urgent() ([]models.Occurrence, error) {
	return UrgentOccurrences(o.Debits(), o.today(), UrgentWindowDays)
}

// MonthStats aggregates one calendar month of the unified view.
func (o *Orchestrator) MonthStats(month time.Month, year int) (*Statistics, error) {
	return MonthlyStatistics(o.Debits(), month, year)
}

// YearStats aggregates a full year of the unified view.
func (o *Orchestrator) YearStats(year int) (*Statistics, error) {
	return YearStatistics(o.Debits(), year)
}

// UpcomingSummary reports the balance left after the next horizonDays of
// debits.
func (o *Orchestrator) UpcomingSummary(horizonDays int) (*UpcomingSummary, error) {
	return BalanceAfterUpcoming(o.CurrentBalance(), o.Debits(), o.today(), horizonDays)
}
