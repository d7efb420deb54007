package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/previpay/previpay/db"
	"github.com/previpay/previpay/pkg/config"
	"github.com/previpay/previpay/pkg/http/mkb"
	"github.com/previpay/previpay/pkg/services"
)

var (
	dbPath  string
	rootCmd *cobra.Command
)

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error().Err(err).Msg("Error getting home directory")
		os.Exit(1)
	}

	defaultDBPath := filepath.Join(homeDir, ".previpay", "debits.db")

	// Initialize configuration
	if err := config.InitGlobalConfig("config.yaml"); err != nil {
		// Only print a warning if the file doesn't exist, as GetConfig will create it later
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Failed to load configuration")
			log.Warn().Msg("A default configuration will be used")
		}
	}

	rootCmd = &cobra.Command{
		Use:   "previpay",
		Short: "A CLI tool for tracking upcoming direct debits",
		Long:  `A CLI tool that tracks recurring direct debits, projects balances, and syncs upcoming payments from a bank account.`,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "Path to the SQLite database")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive REPL",
		Long:  `Start an interactive REPL for executing commands.`,
		Run: func(cmd *cobra.Command, args []string) {
			runREPL(initReplState(cmd.Context()))
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Long:  `Show the current configuration loaded from config.yaml.`,
		Run: func(cmd *cobra.Command, args []string) {
			showConfig()
		},
	}

	rootCmd.AddCommand(replCmd, configCmd)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func initReplState(ctx context.Context) replState {
	// Initialize database
	database, err := db.New(dbPath)
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to database")
		os.Exit(1)
	}
	if err := database.Initialize(); err != nil {
		log.Error().Err(err).Msg("Error initializing database")
		os.Exit(1)
	}

	baseURL, err := config.GetBankingBaseURL()
	if err != nil {
		log.Error().Err(err).Msg("Error reading banking base URL from config")
		os.Exit(1)
	}
	bank, resumed := mkb.NewClientFromSavedSession(baseURL)
	if resumed {
		log.Info().Msg("Resumed saved bank session")
	}

	userID, err := config.GetUserID()
	if err != nil {
		log.Error().Err(err).Msg("Error reading user id from config")
		os.Exit(1)
	}

	orch := services.NewOrchestrator(database, bank, userID)
	if err := orch.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Error loading debits")
		os.Exit(1)
	}

	return replState{
		db:   database,
		orch: orch,
	}
}

type replState struct {
	db   db.Store
	orch *services.Orchestrator
}

func runREPL(state replState) {
	fmt.Println("Welcome to the Previpay REPL!")
	fmt.Println("Type 'exit' or 'quit' to exit.")
	fmt.Println("Enter a command to manage your direct debits.")
	fmt.Println()

	// Close the database once you are done
	defer state.db.Close()

	// Start REPL
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		trimmedLine := strings.TrimSpace(line)

		if trimmedLine == "" {
			continue
		}

		if trimmedLine == "exit" || trimmedLine == "quit" {
			break
		}

		if trimmedLine == "help" {
			printHelp()
			continue
		}

		if trimmedLine == "config" {
			showConfig()
			continue
		}

		if strings.HasPrefix(trimmedLine, "list") {
			state.listDebits(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "show") {
			state.showDebit(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "add") {
			state.addDebit(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "update") {
			state.updateDebit(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "remove") || strings.HasPrefix(trimmedLine, "delete") {
			state.removeDebit(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "paid") {
			state.markAsPaid(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "pause") || strings.HasPrefix(trimmedLine, "resume") {
			state.togglePause(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "balance") {
			state.handleBalance(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "project") {
			state.projectBalance(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "upcoming") {
			state.upcomingSummary(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "urgent") {
			state.listUrgent()
			continue
		}

		if strings.HasPrefix(trimmedLine, "stats") {
			state.showStats(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "history") {
			state.showHistory(trimmedLine)
			continue
		}

		if strings.HasPrefix(trimmedLine, "bank") {
			state.handleBank(trimmedLine)
			continue
		}

		fmt.Println("Unknown command. Type 'help' for a list of commands.")
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("Error reading input")
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  help                 - Show this help message")
	fmt.Println("  config               - Show the current configuration")
	fmt.Println("  list [category]      - List all debits, optionally grouped by category")
	fmt.Println("  show <id>            - Show the full details of one debit")
	fmt.Println("  add <company> <amount> <frequency> <date> [<category>]")
	fmt.Println("                       - Add a debit (frequency: once, weekly, biweekly,")
	fmt.Println("                         monthly, quarterly, biannual, annual)")
	fmt.Println("  update <id> <field> <value>")
	fmt.Println("                       - Update one field (company, amount, category,")
	fmt.Println("                         frequency, date, description)")
	fmt.Println("  remove <id>          - Remove a debit")
	fmt.Println("  paid <id>            - Mark a debit as paid and advance its date")
	fmt.Println("  pause <id>           - Pause or resume a debit")
	fmt.Println("  balance [set <amount>]")
	fmt.Println("                       - Show or overwrite the current balance")
	fmt.Println("  project <date>       - Project the balance out to a date (YYYY-MM-DD)")
	fmt.Println("  upcoming [days]      - Balance left after the upcoming debits (default 30)")
	fmt.Println("  urgent               - List debits due within the next 3 days")
	fmt.Println("  stats [month <m> <y> | year <y>]")
	fmt.Println("                       - Aggregate totals for a month or a year")
	fmt.Println("  history [id]         - Show recorded payments, newest first")
	fmt.Println("  bank connect <email> <password>")
	fmt.Println("                       - Connect to the bank and sync")
	fmt.Println("  bank sync            - Re-fetch the bank balance and upcoming debits")
	fmt.Println("  bank status          - Show the bank connection and last sync")
	fmt.Println("  bank disconnect      - Drop the bank session and its synced data")
	fmt.Println("  exit, quit           - Exit the REPL")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  The application uses a config.yaml file in the current directory.")
	fmt.Println("  Set banking.baseUrl there before using the bank commands.")
}

// showConfig displays the current configuration
func showConfig() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Error().Err(err).Msg("Error loading configuration")
		return
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("User ID:          %s\n", cfg.UserID)
	fmt.Printf("Banking base URL: %s\n", valueOrNotSet(cfg.BankingOptions.BaseURL))
	fmt.Printf("Banking email:    %s\n", valueOrNotSet(cfg.BankingOptions.Email))

	if cfg.BankingOptions.SavedToken != "" {
		fmt.Println("Bank session:     saved")
	} else {
		fmt.Println("Bank session:     none")
	}
}

func valueOrNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
