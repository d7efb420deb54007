package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/previpay/previpay/pkg/config"
	"github.com/previpay/previpay/pkg/models"
)

func (r *replState) handleBank(input string) {
	parts := strings.Fields(input)
	if len(parts) < 2 {
		fmt.Println("Invalid bank command format.")
		fmt.Println("Usage: bank <connect|sync|status|disconnect>")
		return
	}

	switch parts[1] {
	case "connect":
		r.bankConnect(parts)
	case "sync":
		r.bankSync()
	case "status":
		r.bankStatus()
	case "disconnect":
		r.bankDisconnect()
	default:
		fmt.Println("Unknown command. Supported commands are: connect, sync, status, disconnect")
	}
}

func (r *replState) bankConnect(parts []string) {
	var email, password string
	if len(parts) >= 4 {
		email, password = parts[2], parts[3]
	} else {
		// Fall back to the credentials in config.yaml.
		var err error
		email, password, err = config.GetBankingCredentials()
		if err != nil {
			fmt.Println("Usage: bank connect <email> <password>")
			fmt.Println("Or set banking.email and banking.password in config.yaml")
			return
		}
	}

	if result := r.orch.ConnectBank(context.Background(), email, password); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error connecting to bank")
		return
	}

	log.Info().Msg("Bank connected and synced")
}

func (r *replState) bankSync() {
	if result := r.orch.Sync(context.Background()); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error syncing with bank")
		return
	}

	log.Info().Int("debits", len(r.orch.BankDebits())).Msg("Bank data refreshed")
}

func (r *replState) bankStatus() {
	if !r.orch.IsBankConnected() {
		fmt.Println("Bank: not connected")
		return
	}

	fmt.Println("Bank: connected")

	state := r.orch.SyncState()
	switch state.Status {
	case models.SyncError:
		fmt.Printf("Last sync failed: %s\n", state.Error)
	case models.SyncRunning:
		fmt.Println("Sync in progress")
	}
	if state.LastSync != nil {
		fmt.Printf("Last successful sync: %s\n", state.LastSync.Format(time.RFC3339))
	}

	if snapshot := r.orch.BankBalance(); snapshot != nil {
		fmt.Printf("Account %q balance: %s %s\n",
			snapshot.AccountName, snapshot.Amount.Value, snapshot.Amount.Currency)
	}
	fmt.Printf("Synced debits: %d\n", len(r.orch.BankDebits()))
}

func (r *replState) bankDisconnect() {
	if result := r.orch.DisconnectBank(); !result.Success {
		log.Error().Str("error", result.Error).Msg("Error disconnecting from bank")
		return
	}

	log.Info().Msg("Bank disconnected")
}
