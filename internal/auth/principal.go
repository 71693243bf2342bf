// Package auth resolves identities and decides what they may do.
//
// Every service operation receives a Principal explicitly; nothing in
// this package reads ambient session state.
package auth

import "kopimakmur/internal/core"

// Capability is a single permission checked by handlers and services.
type Capability string

const (
	ViewLedger   Capability = "ledger:view"
	EditLedger   Capability = "ledger:edit"
	ViewReports  Capability = "reports:view"
	ViewOverview Capability = "overview:view"
	Administer   Capability = "admin"
)

// grants lists what each role may do. Roles not listed fall back to
// readOnly; anything not granted is denied.
var grants = map[core.Role][]Capability{
	core.RoleAdmin:    {ViewLedger, EditLedger, ViewReports, ViewOverview, Administer},
	core.RoleGuest:    {ViewLedger, EditLedger, ViewReports},
	core.RoleViewOnly: {ViewLedger, ViewReports, ViewOverview},
}

var readOnly = []Capability{ViewLedger, ViewReports}

// Principal is an authenticated identity.
type Principal struct {
	UserID   int64 // 0 for seed accounts
	Username string
	Role     core.Role
	Seed     bool
}

// Authenticated reports whether p carries an identity at all.
func (p Principal) Authenticated() bool {
	return p.Username != ""
}

func (p Principal) Can(c Capability) bool {
	if !p.Authenticated() {
		return false
	}
	caps, ok := grants[p.Role]
	if !ok {
		caps = readOnly
	}
	for _, have := range caps {
		if have == c {
			return true
		}
	}
	return false
}

// Is reports whether p is the persisted user with the given id. Seed
// principals never match a stored user.
func (p Principal) Is(userID int64) bool {
	return !p.Seed && p.UserID != 0 && p.UserID == userID
}

// LandingPath is where a principal goes after login or after being
// refused a page.
func (p Principal) LandingPath() string {
	switch p.Role {
	case core.RoleAdmin:
		return "/admin/dashboard"
	case core.RoleViewOnly:
		return "/viewonly"
	default:
		return "/cashflow"
	}
}
