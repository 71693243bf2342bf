// Package backend selects and opens the configured storage.Store.
package backend

import (
	"kopimakmur/internal/storage"
)

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result contains the opened store and its cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Config holds what is needed to open a backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string
}
