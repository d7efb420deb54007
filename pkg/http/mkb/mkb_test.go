package mkb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/previpay/previpay/pkg/config"
	"github.com/previpay/previpay/pkg/models"
)

func setupTestConfig(t *testing.T) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "mkb-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	path := filepath.Join(tempDir, "config.yaml")
	content := []byte("userId: tester\nbanking:\n  baseUrl: http://ignored\n")
	require.NoError(t, os.WriteFile(path, content, 0644))
	require.NoError(t, config.InitGlobalConfig(path))
}

func TestAuthenticate(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-abc"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	require.NoError(t, c.Authenticate(context.Background(), "client@cic.fr", "password123"))
	assert.True(t, c.IsConnected())

	// The session is persisted for the next run.
	token, err := config.GetBankingSavedToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestAuthenticateRejected(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect email or password"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Authenticate(context.Background(), "client@cic.fr", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect email or password")
	assert.False(t, c.IsConnected())
}

func TestAuthenticateGatewayErrorPage(t *testing.T) {
	setupTestConfig(t)

	// A proxy between us and the bank answers with an HTML error page.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html><body><h1>502 Bad Gateway</h1></body></html>`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Authenticate(context.Background(), "client@cic.fr", "password123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.NotContains(t, err.Error(), "parse")
	assert.False(t, c.IsConnected())
}

func TestAuthenticateMissingToken(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Authenticate(context.Background(), "client@cic.fr", "password123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access token")
}

func TestFetchBalance(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts", r.URL.Path)
		require.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"id": "acc_002", "name": "Livret A", "account_type": "savings", "balance": 15000.00},
			{"id": "acc_001", "name": "Compte Courant", "account_type": "checking", "balance": 2850.75}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	c.token = "tok-abc"

	snapshot, err := c.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2850.75", snapshot.Amount.Value)
	assert.Equal(t, models.SourceBank, snapshot.Source)
	assert.Equal(t, "Compte Courant", snapshot.AccountName)
}

func TestFetchBalanceNoChecking(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "acc_002", "name": "Livret A", "account_type": "savings", "balance": 15000.00}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	c.token = "tok-abc"

	_, err := c.FetchBalance(context.Background())
	assert.Error(t, err)
}

func TestFetchUpcomingDebitsNormalization(t *testing.T) {
	setupTestConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upcoming-debits", r.URL.Path)
		require.Equal(t, "60", r.URL.Query().Get("days_ahead"))
		w.Write([]byte(`[
			{"id": "deb_001", "account_id": "acc_001", "scheduled_date": "2025-04-05",
			 "amount": -890.00, "description": "Loyer mensuel", "beneficiary": "SCI IMMOBILIER",
			 "is_recurring": true},
			{"id": "deb_002", "account_id": "acc_001", "scheduled_date": "2025-04-03",
			 "amount": -75.20, "description": "Facture electricite", "beneficiary": "",
			 "is_recurring": false}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	c.token = "tok-abc"

	debits, err := c.FetchUpcomingDebits(context.Background(), 60)
	require.NoError(t, err)
	require.Len(t, debits, 2)

	rent := debits[0]
	assert.Equal(t, "bank_deb_001", rent.ID)
	assert.Equal(t, "SCI IMMOBILIER", rent.CompanyName)
	// Remote amounts are signed deductions; internal amounts are unsigned.
	assert.Equal(t, "890.00", rent.Amount.Value)
	assert.Equal(t, models.FrequencyMonthly, rent.Frequency)
	assert.Equal(t, "2025-04-05", rent.NextPaymentDate)
	assert.Equal(t, models.StatusActive, rent.Status)
	assert.False(t, rent.IsPaused)
	assert.Equal(t, models.SourceBank, rent.Source)

	power := debits[1]
	// Beneficiary missing: description becomes the display name.
	assert.Equal(t, "Facture electricite", power.CompanyName)
	assert.Equal(t, "75.20", power.Amount.Value)
	assert.Equal(t, models.FrequencyOnce, power.Frequency)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	setupTestConfig(t)
	require.NoError(t, config.SetBankingSavedToken("tok-stale"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c, connected := NewClientFromSavedSession(server.URL)
	require.True(t, connected)

	_, err := c.FetchUpcomingDebits(context.Background(), 30)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.IsConnected())

	// The persisted session is gone too; the next run starts disconnected.
	_, err = config.GetBankingSavedToken()
	assert.Error(t, err)
}

func TestNotConnected(t *testing.T) {
	setupTestConfig(t)

	c := NewClient("http://bank.invalid")
	_, err := c.FetchBalance(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestUnreachableClassification(t *testing.T) {
	setupTestConfig(t)

	// Nothing listens here; the dial fails immediately.
	c := NewClient("http://127.0.0.1:1")
	c.token = "tok-abc"

	_, err := c.FetchUpcomingDebits(context.Background(), 30)
	assert.ErrorIs(t, err, ErrUnreachable)
}
