package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

const testSecret = "test-secret-0123456789"

func TestProvider_IssueVerify_Tenant(t *testing.T) {
	p := NewProvider(testSecret, time.Hour)
	sess := domain.Session{Kind: domain.SessionTenant, UserID: "u-1", TenantID: "t-1", Roles: []string{"member", "billing"}}

	token, err := p.Issue(sess)
	require.NoError(t, err)

	got, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestProvider_IssueVerify_Staff(t *testing.T) {
	p := NewProvider(testSecret, 0)
	sess := domain.Session{Kind: domain.SessionStaff, UserID: "u-9", StaffRole: "wrk_operator"}

	token, err := p.Issue(sess)
	require.NoError(t, err)

	got, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStaff, got.Kind)
	assert.Equal(t, "wrk_operator", got.StaffRole)
	assert.Empty(t, got.TenantID)
}

func TestProvider_IssueRejectsIncompleteSessions(t *testing.T) {
	p := NewProvider(testSecret, time.Hour)

	_, err := p.Issue(domain.Session{Kind: domain.SessionTenant, UserID: "u-1"})
	assert.Error(t, err)
	_, err = p.Issue(domain.Session{Kind: domain.SessionStaff, UserID: "u-1"})
	assert.Error(t, err)
	_, err = p.Issue(domain.Session{UserID: "u-1"})
	assert.Error(t, err)
}

func TestProvider_VerifyFailures(t *testing.T) {
	p := NewProvider(testSecret, time.Hour)
	token, err := p.Issue(domain.Session{Kind: domain.SessionTenant, UserID: "u-1", TenantID: "t-1"})
	require.NoError(t, err)

	expired := NewProvider(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, err := expired.Issue(domain.Session{Kind: domain.SessionTenant, UserID: "u-1", TenantID: "t-1"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Kind: "tenant", TenantID: "t-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badKind, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Kind: "robot"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		p     *Provider
	}{
		{"empty", "", p},
		{"malformed", "not.a.token", p},
		{"wrong secret", token, NewProvider("another-secret-0123456789", time.Hour)},
		{"expired", oldToken, p},
		{"alg none", unsigned, p},
		{"unknown kind", badKind, p},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	p := NewProvider(testSecret, time.Hour)
	token, err := p.Issue(domain.Session{Kind: domain.SessionTenant, UserID: "u-1", TenantID: "t-1", Roles: []string{"owner"}})
	require.NoError(t, err)

	var (
		got   domain.Session
		found bool
	)
	handler := Middleware(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, found)
		assert.Equal(t, "t-1", got.TenantID)
	})

	t.Run("anonymous", func(t *testing.T) {
		found = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, found)
	})

	for _, header := range []string{"Bearer", "Basic abc", "Bearer not.a.token"} {
		t.Run("rejects "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":401`)
		})
	}
}
