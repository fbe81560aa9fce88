package backend

import (
	"fmt"

	"github.com/work4inventions/financeInsight/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		DynamoRegion:   appConfig.DynamoRegion,
		DynamoTable:    appConfig.DynamoTable,
		DynamoEndpoint: appConfig.DynamoEndpoint,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case DynamoBackend:
		if c.DynamoRegion == "" {
			return fmt.Errorf("DynamoDB region is required for dynamo backend")
		}
		if c.DynamoTable == "" {
			return fmt.Errorf("DynamoDB table name is required for dynamo backend")
		}

	case MemoryBackend:
		// Nothing to validate, the memory backend is self-contained
	}

	return nil
}
