package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/session"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/config"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

const testSecret = "cmd-test-secret-0123456789"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseDiscounts(t *testing.T) {
	got, err := parseDiscounts([]string{"promo:0.1:setup_fee", "loyal:0.05:unit_price"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Discount{
		{Source: "promo", Percent: 0.1, AppliesTo: domain.ScopeSetupFee},
		{Source: "loyal", Percent: 0.05, AppliesTo: domain.ScopeUnitPrice},
	}, got)

	_, err = parseDiscounts([]string{"promo:0.1"})
	assert.Error(t, err)
	_, err = parseDiscounts([]string{"promo:ten:setup_fee"})
	assert.Error(t, err)
}

func TestPriceCommand(t *testing.T) {
	out, err := execute(t, "price", "--complexity", "basic", "--action", "wrkaction-79=5",
		"--volume", "1000", "--discount", "promo:0.1:setup_fee")
	require.NoError(t, err)

	assert.Contains(t, out, "Setup fee:            900.00 USD (base 1000.00)")
	assert.Contains(t, out, "Unit price:           1.2500 USD per outcome")
	assert.Contains(t, out, "Monthly spend:        1250.00 USD at 1000 outcomes")
	assert.Contains(t, out, "Discount promo: 10% off setup_fee")
}

func TestPriceCommand_JSON(t *testing.T) {
	out, err := execute(t, "price", "--complexity", "medium", "--action", "wrkaction-1=10", "--json")
	require.NoError(t, err)

	var result domain.PricingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.InDelta(t, 2500, result.SetupFee, 1e-9)
	assert.InDelta(t, 10, result.UnitPrice, 1e-9)
}

func TestPriceCommand_UnknownComplexity(t *testing.T) {
	_, err := execute(t, "price", "--complexity", "huge")
	var inputErr *domain.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	out, err := execute(t, "token", "--tenant", "t-1", "--role", "owner", "--role", "billing")
	require.NoError(t, err)

	sess, err := session.NewProvider(testSecret, 0).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionTenant, sess.Kind)
	assert.Equal(t, "t-1", sess.TenantID)
	assert.Equal(t, []string{"owner", "billing"}, sess.Roles)
	assert.NotEmpty(t, sess.UserID)
}

func TestTokenCommand_Staff(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	out, err := execute(t, "token", "--staff-role", "wrk_admin", "--user", "ops-1")
	require.NoError(t, err)

	sess, err := session.NewProvider(testSecret, 0).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Kind: domain.SessionStaff, UserID: "ops-1", StaffRole: "wrk_admin"}, sess)

	_, err = execute(t, "token", "--staff-role", "wrk_admin", "--tenant", "t-1")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")

	_, err := execute(t, "token", "--tenant", "t-1")
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func testConfig(t *testing.T, port string) config.Config {
	t.Helper()
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("OTEL_ENVIRONMENT", "test")
	return config.Config{
		Port:            port,
		DatabasePath:    filepath.Join(t.TempDir(), "run.db"),
		LogLevel:        "error",
		SessionSecret:   testSecret,
		CatalogTTL:      time.Minute,
		ShutdownTimeout: 5 * time.Second,
	}
}

// TestRun exercises run() end-to-end: telemetry, storage, River, the HTTP
// server and graceful shutdown.
func TestRun(t *testing.T) {
	cfg := testConfig(t, "19876")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, cfg) }()

	serverURL := "http://localhost:" + cfg.Port
	ready := false
	for range 50 {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, serverURL+"/api/v1/automations", nil)
		resp, reqErr := http.DefaultClient.Do(req)
		if reqErr == nil {
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			ready = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.True(t, ready, "server did not start within 5 seconds")

	token, err := session.NewProvider(testSecret, 0).Issue(domain.Session{
		Kind: domain.SessionTenant, UserID: "u-1", TenantID: "t-1", Roles: []string{"owner"},
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, serverURL+"/api/v1/automations",
		strings.NewReader(`{"name":"Smoke"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

func TestRun_InvalidDB(t *testing.T) {
	cfg := testConfig(t, "19877")
	cfg.DatabasePath = "/nonexistent/path/db.sqlite"

	assert.Error(t, run(context.Background(), cfg))
}

func TestRun_RequiresSessionSecret(t *testing.T) {
	cfg := testConfig(t, "19878")
	cfg.SessionSecret = ""

	assert.ErrorContains(t, run(context.Background(), cfg), "SESSION_SECRET")
}
