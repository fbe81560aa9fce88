package backend

import (
	"context"

	"github.com/work4inventions/financeInsight/internal/gateway"
)

// Backend bundles every gateway port a configured data backend must serve.
type Backend interface {
	gateway.Lister
	gateway.Creator
	gateway.Updater
	gateway.Deleter
	gateway.ProfileStore
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// DynamoDB specific
	DynamoRegion   string
	DynamoTable    string
	DynamoEndpoint string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	DynamoBackend BackendType = "dynamo"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, DynamoBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// BackendTypeStrings returns all valid backend type strings.
func BackendTypeStrings() []string {
	return []string{SQLiteBackend.String(), DynamoBackend.String(), MemoryBackend.String()}
}
