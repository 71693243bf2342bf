package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	applog "kopimakmur/internal/log"
	"kopimakmur/internal/report"
	"kopimakmur/internal/services"
	"kopimakmur/internal/storage/memory"
)

func fixedNow() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

type testEnv struct {
	srv      *Server
	store    *memory.Store
	sessions *auth.SessionManager
}

func newTestEnv(t *testing.T, loginLimit int) *testEnv {
	t.Helper()
	store := memory.New()
	sessions := auth.NewSessionManager("test-secret-key-0123456789", time.Hour, false)
	for _, p := range []*auth.Principal{guestUser, ownerView} {
		u, err := store.CreateUser(context.Background(), core.User{Username: p.Username, PasswordHash: "x", Role: p.Role})
		if err != nil || u.ID != p.UserID {
			t.Fatalf("seed user %s: id=%d err=%v", p.Username, u.ID, err)
		}
	}

	srv, err := NewServer(":0", Deps{
		Ledger:         services.NewLedger(store, nil).WithClock(fixedNow),
		Users:          services.NewUsers(store),
		Products:       services.NewProducts(store),
		Auth:           auth.NewAuthenticator(auth.NewSeedProvider(auth.DefaultSeedAccounts()), store),
		Sessions:       sessions,
		Ready:          store,
		Logger:         applog.New(applog.Config{Level: applog.DefaultConfig().Level, Output: io.Discard}),
		Now:            fixedNow,
		LoginRateLimit: loginLimit,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, req *http.Request, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	if p != nil {
		token, err := e.sessions.Sign(*p)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

var (
	seedAdmin = &auth.Principal{Username: "BagasNz", Role: core.RoleAdmin, Seed: true}
	guestUser = &auth.Principal{UserID: 1, Username: "kasir", Role: core.RoleGuest}
	ownerView = &auth.Principal{UserID: 2, Username: "owner", Role: core.RoleViewOnly}
)

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status=%d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if body["status"] != "healthy" || body["version"] != Version || body["timestamp"] == "" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("security headers missing")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}

	_ = env.store.Close()
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz on closed store status=%d", rr.Code)
	}
}

func TestIndexRedirects(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name string
		user *auth.Principal
		want string
	}{
		{"anonymous", nil, "/login"},
		{"admin", seedAdmin, "/admin/dashboard"},
		{"guest", guestUser, "/cashflow"},
		{"viewonly", ownerView, "/viewonly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), tt.user)
			if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != tt.want {
				t.Fatalf("got %d %q, want redirect to %q", rr.Code, rr.Header().Get("Location"), tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, 0)

	hash, err := auth.HashPassword("rahasia")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := env.store.CreateUser(context.Background(), core.User{Username: "barista", PasswordHash: hash, Role: core.RoleGuest}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []struct {
		name        string
		username    string
		password    string
		wantPath    string
		wantSession bool
	}{
		{"seed admin", "BagasNz", "162316", "/admin/dashboard", true},
		{"seed guest", "Refki", "owner", "/cashflow", true},
		{"stored user", "barista", "rahasia", "/cashflow", true},
		{"wrong password", "barista", "salah", "/login", false},
		{"unknown user", "siapa", "apa", "/login", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, postForm("/login", url.Values{"username": {tt.username}, "password": {tt.password}}), nil)
			if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != tt.wantPath {
				t.Fatalf("got %d %q, want %q", rr.Code, rr.Header().Get("Location"), tt.wantPath)
			}
			if got := hasCookie(rr, auth.SessionCookieName); got != tt.wantSession {
				t.Fatalf("session cookie set=%v, want %v", got, tt.wantSession)
			}
			if !hasCookie(rr, flashCookieName) {
				t.Fatalf("expected a flash notice")
			}
		})
	}
}

func TestFlashShownOnce(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(t, postForm("/login", url.Values{"username": {"BagasNz"}, "password": {"162316"}}), nil)
	cookies := rr.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	page := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(page, req)
	if page.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", page.Code)
	}
	if !strings.Contains(page.Body.String(), msgLoginSeed) {
		t.Fatalf("dashboard did not show login notice")
	}
	for _, c := range page.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge >= 0 {
			t.Fatalf("flash cookie not expired after display")
		}
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, 2)
	form := url.Values{"username": {"x"}, "password": {"y"}}

	for i := 0; i < 2; i++ {
		rr := env.do(t, postForm("/login", form), nil)
		if rr.Header().Get("Retry-After") != "" {
			t.Fatalf("attempt %d limited too early", i+1)
		}
	}
	rr := env.do(t, postForm("/login", form), nil)
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("third attempt not limited")
	}
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("limited login got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// Rendering the form is never limited.
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login page status=%d", rr.Code)
	}
}

func TestPageGates(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name     string
		method   string
		path     string
		user     *auth.Principal
		wantCode int
		wantPath string
	}{
		{"anonymous cashflow", http.MethodGet, "/cashflow", nil, http.StatusSeeOther, "/login"},
		{"anonymous laporan", http.MethodGet, "/laporan", nil, http.StatusSeeOther, "/login"},
		{"guest admin dashboard", http.MethodGet, "/admin/dashboard", guestUser, http.StatusSeeOther, "/cashflow"},
		{"guest users", http.MethodGet, "/users", guestUser, http.StatusSeeOther, "/cashflow"},
		{"viewonly add", http.MethodPost, "/cashflow/add", ownerView, http.StatusSeeOther, "/viewonly"},
		{"viewonly products", http.MethodGet, "/products", ownerView, http.StatusSeeOther, "/viewonly"},
		{"guest viewonly page", http.MethodGet, "/viewonly", guestUser, http.StatusSeeOther, "/cashflow"},
		{"admin dashboard", http.MethodGet, "/admin/dashboard", seedAdmin, http.StatusOK, ""},
		{"viewonly page", http.MethodGet, "/viewonly", ownerView, http.StatusOK, ""},
		{"guest cashflow", http.MethodGet, "/cashflow", guestUser, http.StatusOK, ""},
		{"viewonly laporan", http.MethodGet, "/laporan", ownerView, http.StatusOK, ""},
		{"admin users", http.MethodGet, "/users", seedAdmin, http.StatusOK, ""},
		{"admin products", http.MethodGet, "/products", seedAdmin, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, httptest.NewRequest(tt.method, tt.path, nil), tt.user)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantPath != "" && rr.Header().Get("Location") != tt.wantPath {
				t.Fatalf("location=%q, want %q", rr.Header().Get("Location"), tt.wantPath)
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	rr := env.do(t, postForm("/cashflow/add", url.Values{
		"tanggal":   {"2024-03-10"},
		"tipe":      {"pengeluaran"},
		"kategori":  {"Bahan Pokok"},
		"deskripsi": {"Biji kopi"},
		"jumlah":    {"250.000"},
		"satuan":    {"kg"},
	}), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" {
		t.Fatalf("add got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	tx, err := env.store.GetTransaction(ctx, 1)
	if err != nil {
		t.Fatalf("stored transaction: %v", err)
	}
	if tx.Amount.Rupiah != 250000 || tx.Kind != core.KindExpense || tx.OwnerID != guestUser.UserID {
		t.Fatalf("unexpected stored transaction: %+v", tx)
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/cashflow/edit/1", nil), guestUser)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Biji kopi") {
		t.Fatalf("edit page status=%d", rr.Code)
	}

	rr = env.do(t, postForm("/cashflow/update/1", url.Values{
		"tanggal":  {"2024-03-11"},
		"tipe":     {"pengeluaran"},
		"kategori": {"Bahan Pokok"},
		"jumlah":   {"300000"},
	}), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" {
		t.Fatalf("update got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	tx, _ = env.store.GetTransaction(ctx, 1)
	if tx.Amount.Rupiah != 300000 || tx.Date.String() != "2024-03-11" {
		t.Fatalf("update not applied: %+v", tx)
	}

	rr = env.do(t, postForm("/delete_transaction/1", nil), guestUser)
	assertMutation(t, rr, http.StatusOK, true, "")

	rr = env.do(t, postForm("/delete_transaction/1", nil), guestUser)
	assertMutation(t, rr, http.StatusNotFound, false, msgTxNotFound)
}

func TestTransactionInvalidInput(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(t, postForm("/cashflow/add", url.Values{
		"tanggal":  {"2024-02-30"},
		"tipe":     {"pendapatan"},
		"kategori": {"Penjualan"},
		"jumlah":   {"1000"},
	}), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" {
		t.Fatalf("invalid add got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if txs, _ := env.store.ListTransactions(context.Background(), report.Filter{}, 0); len(txs) != 0 {
		t.Fatalf("invalid transaction was stored")
	}

	// Parses cleanly; the ledger rejects the blank category.
	rr = env.do(t, postForm("/cashflow/add", url.Values{
		"tanggal":  {"2024-03-02"},
		"tipe":     {"pendapatan"},
		"kategori": {"   "},
		"jumlah":   {"1000"},
	}), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" || !hasCookie(rr, flashCookieName) {
		t.Fatalf("blank category got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if txs, _ := env.store.ListTransactions(context.Background(), report.Filter{}, 0); len(txs) != 0 {
		t.Fatalf("transaction without category was stored")
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/cashflow/edit/99", nil), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" {
		t.Fatalf("missing edit got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/cashflow?month=13", nil), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/cashflow" {
		t.Fatalf("invalid filter got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestMutationGates(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(t, postForm("/delete_transaction/1", nil), nil)
	assertMutation(t, rr, http.StatusUnauthorized, false, msgLoginRequired)

	rr = env.do(t, postForm("/delete_transaction/1", nil), ownerView)
	assertMutation(t, rr, http.StatusForbidden, false, msgReadOnly)

	rr = env.do(t, postForm("/delete_user/1", nil), guestUser)
	assertMutation(t, rr, http.StatusForbidden, false, msgAdminOnly)
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	rr := env.do(t, postForm("/users/add", url.Values{
		"username": {"rina"},
		"password": {"pass123"},
		"role":     {"viewonly"},
	}), seedAdmin)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/users" {
		t.Fatalf("add user got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	u, err := env.store.GetUserByUsername(ctx, "rina")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if u.PasswordHash == "pass123" || !auth.CheckPassword(u.PasswordHash, "pass123") {
		t.Fatalf("password not hashed")
	}
	id := strconv.FormatInt(u.ID, 10)

	// Duplicate usernames produce a notice, not a second row.
	env.do(t, postForm("/users/add", url.Values{"username": {"rina"}, "password": {"x"}, "role": {"guest"}}), seedAdmin)
	if n, _ := env.store.CountUsers(ctx); n != 3 {
		t.Fatalf("users=%d after duplicate add", n)
	}

	rr = env.do(t, postForm("/users/edit", url.Values{
		"user_id":  {id},
		"username": {"rina"},
		"password": {""},
		"role":     {"admin"},
	}), seedAdmin)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("edit user status=%d", rr.Code)
	}
	u, _ = env.store.GetUser(ctx, u.ID)
	if u.Role != core.RoleAdmin || !auth.CheckPassword(u.PasswordHash, "pass123") {
		t.Fatalf("edit user result: %+v", u)
	}

	self := &auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
	rr = env.do(t, postForm("/delete_user/"+id, nil), self)
	assertMutation(t, rr, http.StatusOK, false, msgSelfDelete)

	rr = env.do(t, postForm("/delete_user/"+id, nil), seedAdmin)
	assertMutation(t, rr, http.StatusOK, true, "")

	rr = env.do(t, postForm("/delete_user/"+id, nil), seedAdmin)
	assertMutation(t, rr, http.StatusNotFound, false, msgUserNotFound)
}

func TestSessionFollowsStoredAccount(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	u, err := env.store.GetUser(ctx, guestUser.UserID)
	if err != nil {
		t.Fatalf("guest user: %v", err)
	}
	u.Role = core.RoleViewOnly
	if err := env.store.UpdateUser(ctx, u); err != nil {
		t.Fatalf("demote: %v", err)
	}

	// The cookie still says guest; the stored role wins.
	rr := env.do(t, postForm("/delete_transaction/1", nil), guestUser)
	assertMutation(t, rr, http.StatusForbidden, false, msgReadOnly)
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), guestUser)
	if rr.Header().Get("Location") != "/viewonly" {
		t.Fatalf("demoted user landed on %q", rr.Header().Get("Location"))
	}

	if err := env.store.DeleteUser(ctx, guestUser.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/cashflow", nil), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("deleted user got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard-stats", nil), guestUser)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user api status=%d", rr.Code)
	}
}

func TestProductManagement(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	rr := env.do(t, postForm("/products/add", url.Values{
		"nama":     {"Kopi Susu"},
		"kategori": {"Minuman"},
		"harga":    {"18.000"},
		"stok":     {"20"},
	}), seedAdmin)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/products" {
		t.Fatalf("add product got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	p, err := env.store.GetProduct(ctx, 1)
	if err != nil || p.Price.Rupiah != 18000 || p.Stock != 20 {
		t.Fatalf("stored product %+v, err %v", p, err)
	}

	env.do(t, postForm("/products/edit", url.Values{
		"product_id": {"1"},
		"nama":       {"Kopi Susu Gula Aren"},
		"kategori":   {"Minuman"},
		"harga":      {"20000"},
		"stok":       {"15"},
	}), seedAdmin)
	p, _ = env.store.GetProduct(ctx, 1)
	if p.Name != "Kopi Susu Gula Aren" || p.Stock != 15 {
		t.Fatalf("edit product result %+v", p)
	}

	rr = env.do(t, postForm("/delete_product/1", nil), seedAdmin)
	assertMutation(t, rr, http.StatusOK, true, "")
}

func TestReadAPIs(t *testing.T) {
	env := newTestEnv(t, 0)

	for _, path := range []string{"/api/dashboard-stats", "/api/expense-distribution", "/api/cashflow-trend"} {
		rr := env.do(t, httptest.NewRequest(http.MethodGet, path, nil), nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s anonymous status=%d", path, rr.Code)
		}
	}

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/api/expense-distribution", nil), guestUser)
	if rr.Code != http.StatusOK || rr.Header().Get(PlaceholderHeader) != "true" {
		t.Fatalf("empty month should serve placeholder, got %d %q", rr.Code, rr.Header().Get(PlaceholderHeader))
	}

	seed := []core.Transaction{
		{Date: core.NewDate(2024, 3, 1), Kind: core.KindIncome, Category: "Penjualan", Amount: core.Money{Rupiah: 500000}},
		{Date: core.NewDate(2024, 3, 2), Kind: core.KindExpense, Category: "Barang", Amount: core.Money{Rupiah: 50000}},
		{Date: core.NewDate(2024, 3, 3), Kind: core.KindExpense, Category: "Bahan Pokok", Amount: core.Money{Rupiah: 150000}},
		{Date: core.NewDate(2023, 12, 20), Kind: core.KindIncome, Category: "Penjualan", Amount: core.Money{Rupiah: 70000}},
	}
	for _, tx := range seed {
		if _, err := env.store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/expense-distribution", nil), guestUser)
	if rr.Header().Get(PlaceholderHeader) != "" {
		t.Fatalf("placeholder header set with real data")
	}
	var dist struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dist); err != nil {
		t.Fatalf("distribution body: %v", err)
	}
	if len(dist.Labels) != 2 || dist.Labels[0] != "Bahan Pokok" {
		t.Fatalf("distribution not sorted by total: %+v", dist)
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard-stats", nil), ownerView)
	var stats services.DashboardStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("stats body: %v", err)
	}
	want := services.DashboardStats{TotalRevenue: 500000, TotalExpense: 200000, TotalTransactions: 3, TotalUsers: 2, Profit: 300000}
	if stats != want {
		t.Fatalf("stats=%+v, want %+v", stats, want)
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/cashflow-trend", nil), guestUser)
	var trend trendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &trend); err != nil {
		t.Fatalf("trend body: %v", err)
	}
	if len(trend.Labels) != 6 || len(trend.Revenue) != 6 || len(trend.Expense) != 6 {
		t.Fatalf("trend should have six buckets: %+v", trend)
	}
	if trend.Labels[5] != "Maret 2024" || trend.Revenue[5] != 500000 || trend.Revenue[2] != 70000 {
		t.Fatalf("unexpected trend: %+v", trend)
	}
}

func TestReportAndExport(t *testing.T) {
	env := newTestEnv(t, 0)
	_, _ = env.store.CreateTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 3, 5), Kind: core.KindIncome, Category: "Penjualan", Amount: core.Money{Rupiah: 120000},
	})

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/laporan?month=3&year=2024", nil), ownerView)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Laporan Maret 2024") {
		t.Fatalf("report page status=%d", rr.Code)
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/export/excel?month=3&year=2024", nil), ownerView)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("export content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "laporan_cashflow_Maret_2024.csv") {
		t.Fatalf("export disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 || lines[0] != "ID,Tanggal,Tipe,Kategori,Deskripsi,Jumlah,Satuan" {
		t.Fatalf("export body %q", rr.Body.String())
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/export/pdf", nil), ownerView)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/laporan" {
		t.Fatalf("pdf export got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestStoreFailureRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, 0)
	_ = env.store.Close()

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/cashflow", nil), guestUser)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("store failure got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard-stats", nil), guestUser)
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), msgDatabaseError) {
		t.Fatalf("api store failure got %d %s", rr.Code, rr.Body.String())
	}
}

func TestNotFoundAndStatic(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/tidak-ada", nil), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}

	rr = env.do(t, httptest.NewRequest(http.MethodGet, "/static/style.css", nil), nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("static asset got %d cache=%q", rr.Code, rr.Header().Get("Cache-Control"))
	}
}

func hasCookie(rr *httptest.ResponseRecorder, name string) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func assertMutation(t *testing.T, rr *httptest.ResponseRecorder, code int, success bool, message string) {
	t.Helper()
	if rr.Code != code {
		t.Fatalf("status=%d, want %d (body %s)", rr.Code, code, rr.Body.String())
	}
	var got MutationResult
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	if got.Success != success || got.Message != message {
		t.Fatalf("got %+v, want success=%v message=%q", got, success, message)
	}
}
