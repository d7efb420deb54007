// Package mkb talks to the MKB Bank customer API: bearer-token login,
// account balances, and the upcoming-debits feed.
package mkb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/previpay/previpay/pkg/config"
	"github.com/previpay/previpay/pkg/models"
	"github.com/previpay/previpay/pkg/utils"
)

var (
	// ErrNotConnected means no session token is available. It is a normal
	// condition for callers to handle, not a failure.
	ErrNotConnected = errors.New("not connected to bank")
	// ErrTimeout means the bank did not answer within the request timeout.
	ErrTimeout = errors.New("bank request timed out")
	// ErrUnreachable means the bank could not be reached at all.
	ErrUnreachable = errors.New("bank unreachable")
	// ErrUnauthorized means the session expired; the stored session has been
	// cleared and the user must log in again.
	ErrUnauthorized = errors.New("bank session expired, reconnect required")
)

const (
	loginPath    = "/auth/login"
	accountsPath = "/accounts"
	upcomingPath = "/upcoming-debits"

	// Single-digit seconds: a slow bank must not stall the app.
	requestTimeout = 8 * time.Second
)

// Client is an authenticated MKB Bank API client.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewClient creates a client with no session. The base URL comes from the
// banking section of the configuration.
func NewClient(baseURL string) *Client {
	transport := http.DefaultTransport
	if config.GetBankingDebug() {
		transport = utils.DebugRoundTripper()
	}
	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		baseURL: baseURL,
	}
}

// NewClientFromSavedSession restores a client from the persisted session
// token, if one exists. The second return value reports whether a session
// was found.
func NewClientFromSavedSession(baseURL string) (*Client, bool) {
	c := NewClient(baseURL)
	token, err := config.GetBankingSavedToken()
	if err != nil {
		log.Info().Msg("No previous banking session found")
		return c, false
	}
	c.token = token
	return c, true
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Detail      string `json:"detail"`
}

// Authenticate logs in and persists the session token for later runs.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	// The body is only trusted to be JSON on a rejection that carries a
	// detail message; a proxy 502 page must not mask the status.
	if resp.StatusCode != http.StatusOK {
		var rejection loginResponse
		if err := json.Unmarshal(respBody, &rejection); err == nil && rejection.Detail != "" {
			return fmt.Errorf("login rejected: %s", rejection.Detail)
		}
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result loginResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("login response missing access token")
	}

	c.token = result.AccessToken
	if err := config.SetBankingSavedToken(c.token); err != nil {
		log.Warn().Err(err).Msg("Failed to persist banking session")
	}
	return nil
}

// IsConnected reports whether a session token is present.
func (c *Client) IsConnected() bool {
	return c.token != ""
}

// Disconnect drops the in-memory and persisted session.
func (c *Client) Disconnect() error {
	c.token = ""
	return config.SetBankingSavedToken("")
}

// get performs a bearer-authenticated GET and decodes the JSON response into
// out. A 401 clears the stored session.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.token == "" {
		return ErrNotConnected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Expired or revoked session: forget it rather than retrying with a
		// token that can never work again.
		c.token = ""
		if err := config.SetBankingSavedToken(""); err != nil {
			log.Warn().Err(err).Msg("Failed to clear persisted banking session")
		}
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bank API returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

type remoteAccount struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AccountType string  `json:"account_type"`
	Balance     float64 `json:"balance"`
}

// FetchBalance returns the checking account balance.
func (c *Client) FetchBalance(ctx context.Context) (*models.BalanceSnapshot, error) {
	var accounts []remoteAccount
	if err := c.get(ctx, accountsPath, &accounts); err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.AccountType == "checking" {
			return &models.BalanceSnapshot{
				Amount:      models.NewAmount(fmt.Sprintf("%.2f", account.Balance)),
				AsOf:        time.Now(),
				Source:      models.SourceBank,
				AccountName: account.Name,
			}, nil
		}
	}

	return nil, fmt.Errorf("no checking account in bank response (%d accounts)", len(accounts))
}

type remoteDebit struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"account_id"`
	ScheduledDate string  `json:"scheduled_date"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Beneficiary   string  `json:"beneficiary"`
	IsRecurring   bool    `json:"is_recurring"`
}

// FetchUpcomingDebits returns the bank's scheduled debits for the next
// daysAhead days, normalized to the internal debit shape: amounts are made
// unsigned, recurring debits become monthly definitions, one-shot debits
// become "once", and every record is active, unpaused, and bank-sourced.
func (c *Client) FetchUpcomingDebits(ctx context.Context, daysAhead int) ([]*models.Debit, error) {
	var remote []*remoteDebit
	path := fmt.Sprintf("%s?days_ahead=%d", upcomingPath, daysAhead)
	if err := c.get(ctx, path, &remote); err != nil {
		return nil, err
	}

	debits := make([]*models.Debit, 0, len(remote))
	for _, rd := range remote {
		debits = append(debits, normalizeDebit(rd))
	}

	log.Info().Int("count", len(debits)).Msg("Fetched upcoming debits from bank")
	return debits, nil
}

func normalizeDebit(rd *remoteDebit) *models.Debit {
	company := rd.Beneficiary
	if company == "" {
		company = rd.Description
	}

	frequency := models.FrequencyOnce
	if rd.IsRecurring {
		// The feed carries no period; recurring bank debits are treated as
		// monthly, matching how they are predicted upstream.
		frequency = models.FrequencyMonthly
	}

	amount := models.NewAmount(fmt.Sprintf("%.2f", rd.Amount)).Abs()

	return &models.Debit{
		ID:              "bank_" + rd.ID,
		CompanyName:     company,
		Amount:          amount,
		Category:        "Banking",
		Frequency:       frequency,
		NextPaymentDate: rd.ScheduledDate,
		Status:          models.StatusActive,
		IsPaused:        false,
		Description:     rd.Description,
		Source:          models.SourceBank,
	}
}
