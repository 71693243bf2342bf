package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kopimakmur/internal/core"
	"kopimakmur/internal/storage/memory"
)

func TestPrincipalCapabilities(t *testing.T) {
	tests := []struct {
		role    core.Role
		allowed []Capability
		denied  []Capability
	}{
		{core.RoleAdmin, []Capability{ViewLedger, EditLedger, ViewReports, ViewOverview, Administer}, nil},
		{core.RoleGuest, []Capability{ViewLedger, EditLedger, ViewReports}, []Capability{ViewOverview, Administer}},
		{core.RoleViewOnly, []Capability{ViewLedger, ViewReports, ViewOverview}, []Capability{EditLedger, Administer}},
		{"owner", []Capability{ViewLedger, ViewReports}, []Capability{EditLedger, ViewOverview, Administer}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := Principal{Username: "x", Role: tt.role}
			for _, c := range tt.allowed {
				assert.True(t, p.Can(c), "expected %s to have %s", tt.role, c)
			}
			for _, c := range tt.denied {
				assert.False(t, p.Can(c), "expected %s to lack %s", tt.role, c)
			}
		})
	}

	assert.False(t, Principal{Role: core.RoleAdmin}.Can(ViewLedger), "anonymous principal has no capabilities")
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", Principal{Role: core.RoleAdmin}.LandingPath())
	assert.Equal(t, "/viewonly", Principal{Role: core.RoleViewOnly}.LandingPath())
	assert.Equal(t, "/cashflow", Principal{Role: core.RoleGuest}.LandingPath())
	assert.Equal(t, "/cashflow", Principal{Role: "kasir"}.LandingPath())
}

func TestPrincipalIs(t *testing.T) {
	assert.True(t, Principal{UserID: 4}.Is(4))
	assert.False(t, Principal{UserID: 4}.Is(5))
	assert.False(t, Principal{UserID: 0, Seed: true}.Is(0))
}

func TestAuthenticator_SeedTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hash, err := HashPassword("different-secret")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, core.User{Username: "BagasNz", PasswordHash: hash, Role: core.RoleGuest})
	require.NoError(t, err)

	a := NewAuthenticator(NewSeedProvider(DefaultSeedAccounts()), store)

	p, err := a.Authenticate(ctx, "BagasNz", "162316")
	require.NoError(t, err)
	assert.True(t, p.Seed)
	assert.Equal(t, core.RoleAdmin, p.Role)
	assert.Zero(t, p.UserID)

	p, err = a.Authenticate(ctx, "BagasNz", "different-secret")
	require.NoError(t, err, "falls through to the store when the seed password does not match")
	assert.False(t, p.Seed)
	assert.Equal(t, core.RoleGuest, p.Role)
	assert.NotZero(t, p.UserID)
}

func TestAuthenticator_StoreAndFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hash, err := HashPassword("rahasia")
	require.NoError(t, err)
	u, err := store.CreateUser(ctx, core.User{Username: "kasir1", PasswordHash: hash, Role: core.RoleViewOnly})
	require.NoError(t, err)

	a := NewAuthenticator(nil, store)

	p, err := a.Authenticate(ctx, "kasir1", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, core.RoleViewOnly, p.Role)

	for _, creds := range [][2]string{
		{"kasir1", "salah"},
		{"nobody", "rahasia"},
		{"", ""},
		{"Refki", "owner"}, // seed accounts disabled
	} {
		_, err := a.Authenticate(ctx, creds[0], creds[1])
		assert.True(t, errors.Is(err, ErrInvalidCredentials), "creds %v", creds)
	}
}

func TestAuthenticator_Refresh(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u, err := store.CreateUser(ctx, core.User{Username: "kasir1", PasswordHash: "x", Role: core.RoleGuest})
	require.NoError(t, err)

	a := NewAuthenticator(NewSeedProvider(DefaultSeedAccounts()), store)

	seed := Principal{Username: "BagasNz", Role: core.RoleAdmin, Seed: true}
	p, err := a.Refresh(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, seed, p)

	stale := Principal{UserID: u.ID, Username: "kasir1", Role: core.RoleGuest}
	u.Role = core.RoleViewOnly
	require.NoError(t, store.UpdateUser(ctx, u))
	p, err = a.Refresh(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, core.RoleViewOnly, p.Role, "stored role replaces the cookie role")

	require.NoError(t, store.DeleteUser(ctx, u.ID))
	_, err = a.Refresh(ctx, stale)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = NewAuthenticator(nil, store).Refresh(ctx, seed)
	assert.ErrorIs(t, err, ErrNoSession, "seed sessions end when seeding is disabled")
}

func TestDefaultSeedAccounts(t *testing.T) {
	seeds := NewSeedProvider(DefaultSeedAccounts())
	assert.Equal(t, 6, seeds.Len())

	p, ok := seeds.Lookup("Dimse", "owner")
	require.True(t, ok)
	assert.Equal(t, core.RoleGuest, p.Role)

	_, ok = seeds.Lookup("dimse", "owner")
	assert.False(t, ok, "usernames are case sensitive")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("kopi123")
	require.NoError(t, err)
	assert.NotEqual(t, "kopi123", hash)
	assert.True(t, CheckPassword(hash, "kopi123"))
	assert.False(t, CheckPassword(hash, "kopi124"))
	assert.False(t, CheckPassword("not-a-hash", "kopi123"))
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123", time.Hour, false)
	want := Principal{UserID: 12, Username: "hari", Role: core.RoleGuest}

	rr := httptest.NewRecorder()
	require.NoError(t, m.Issue(rr, want))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	got, err := m.Read(req)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionManager_Rejects(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123", time.Hour, false)
	token, err := m.Sign(Principal{UserID: 1, Username: "a", Role: core.RoleAdmin})
	require.NoError(t, err)

	other := NewSessionManager("another-secret-value", time.Hour, false)
	_, err = other.Parse(token)
	assert.True(t, errors.Is(err, ErrNoSession), "wrong key")

	_, err = m.Parse(token + "x")
	assert.True(t, errors.Is(err, ErrNoSession), "tampered signature")

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, ErrNoSession), "expired")

	_, err = m.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, ErrNoSession), "no cookie")
}

func TestSessionManager_Clear(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123", time.Hour, true)
	rr := httptest.NewRecorder()
	m.Clear(rr)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].Secure)
}
