package backend

import (
	"context"
	"fmt"

	"github.com/work4inventions/financeInsight/internal/gateway/memory"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/storage"
	"github.com/work4inventions/financeInsight/internal/storage/dynamo"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case DynamoBackend:
		return f.createDynamoBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldDBPath, config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createDynamoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := dynamo.New(ctx, dynamo.Config{
		Region:    config.DynamoRegion,
		TableName: config.DynamoTable,
		Endpoint:  config.DynamoEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DynamoDB backend: %w", err)
	}

	f.logger.Info("Initialized DynamoDB backend",
		log.FieldDynamoTable, config.DynamoTable,
		log.FieldDynamoRegion, config.DynamoRegion)

	return &BackendResult{
		Backend: store,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store := memory.New()

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Backend: store,
		Cleanup: nil,
	}, nil
}
