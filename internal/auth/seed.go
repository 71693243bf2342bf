package auth

import (
	"crypto/subtle"

	"kopimakmur/internal/core"
)

// SeedAccount is a fixed identity that lives outside the user store and
// is checked with a plaintext comparison. Only for demo deployments.
type SeedAccount struct {
	Username string
	Password string
	Role     core.Role
}

// SeedProvider is a read-only list of seed accounts.
type SeedProvider struct {
	accounts []SeedAccount
}

func NewSeedProvider(accounts []SeedAccount) *SeedProvider {
	return &SeedProvider{accounts: append([]SeedAccount(nil), accounts...)}
}

// DefaultSeedAccounts are the shop's demo logins.
func DefaultSeedAccounts() []SeedAccount {
	accounts := []SeedAccount{{Username: "BagasNz", Password: "162316", Role: core.RoleAdmin}}
	for _, name := range []string{"Refki", "Iqbal", "Rico", "Hari", "Dimse"} {
		accounts = append(accounts, SeedAccount{Username: name, Password: "owner", Role: core.RoleGuest})
	}
	return accounts
}

// Lookup returns the principal for a matching seed account.
func (p *SeedProvider) Lookup(username, password string) (Principal, bool) {
	if p == nil {
		return Principal{}, false
	}
	for _, a := range p.accounts {
		if a.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1 {
			return Principal{Username: a.Username, Role: a.Role, Seed: true}, true
		}
		return Principal{}, false
	}
	return Principal{}, false
}

// Account returns the current principal for a seed username.
func (p *SeedProvider) Account(username string) (Principal, bool) {
	if p == nil {
		return Principal{}, false
	}
	for _, a := range p.accounts {
		if a.Username == username {
			return Principal{Username: a.Username, Role: a.Role, Seed: true}, true
		}
	}
	return Principal{}, false
}

func (p *SeedProvider) Len() int {
	if p == nil {
		return 0
	}
	return len(p.accounts)
}
