package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		DataBackend:     "sqlite",
		SQLiteDBPath:    "./test.db",
		AuthMode:        "dev",
		SessionTTL:      time.Hour,
		BlobDir:         "./blobs",
		ExportBatchSize: 10,
		ExportInterval:  30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid dynamo backend config",
			mutate: func(c *Config) {
				c.DataBackend = "dynamo"
				c.DynamoRegion = "eu-west-1"
				c.DynamoTable = "transactions"
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "mongo" },
			wantErr:     true,
			errorString: "invalid data backend 'mongo'",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "dynamo backend missing table",
			mutate: func(c *Config) {
				c.DataBackend = "dynamo"
				c.DynamoRegion = "eu-west-1"
				c.DynamoTable = ""
			},
			wantErr:     true,
			errorString: "DynamoDB table name cannot be empty",
		},
		{
			name:        "invalid AMQP URL scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/"; c.AMQPExchange = "x"; c.AMQPQueue = "q" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name: "AMQP URL without queue",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = "x"
				c.AMQPQueue = ""
			},
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty",
		},
		{
			name: "google auth missing client id",
			mutate: func(c *Config) {
				c.AuthMode = "google"
				c.GoogleClientSecret = "secret"
				c.GoogleRedirectURL = "http://localhost:8081/auth/callback"
			},
			wantErr:     true,
			errorString: "GOOGLE_CLIENT_ID is required",
		},
		{
			name:        "invalid auth mode",
			mutate:      func(c *Config) { c.AuthMode = "basic" },
			wantErr:     true,
			errorString: "invalid auth mode 'basic'",
		},
		{
			name:        "session TTL too short",
			mutate:      func(c *Config) { c.SessionTTL = 10 * time.Second },
			wantErr:     true,
			errorString: "invalid session TTL",
		},
		{
			name: "spreadsheet configured without credentials",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleSheetName = "Ledger"
			},
			wantErr:     true,
			errorString: "ledger export needs credentials",
		},
		{
			name: "spreadsheet with service account json",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleSheetName = "Ledger"
				c.GoogleServiceAccountJSON = `{"type":"service_account"}`
			},
			wantErr: false,
		},
		{
			name:        "invalid export batch size",
			mutate:      func(c *Config) { c.ExportBatchSize = 0 },
			wantErr:     true,
			errorString: "invalid export batch size 0: must be at least 1",
		},
		{
			name:        "invalid export interval",
			mutate:      func(c *Config) { c.ExportInterval = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid export interval 500ms: must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr false", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	vars := []string{
		"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "AMQP_URL",
		"AUTH_MODE", "SESSION_TTL", "EXPORT_BATCH_SIZE", "EXPORT_INTERVAL",
	}
	original := map[string]string{}
	for _, key := range vars {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.AuthMode != "dev" {
			t.Errorf("Load() AuthMode = %v, want dev", cfg.AuthMode)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 12h", cfg.SessionTTL)
		}
		if cfg.ExportBatchSize != 10 {
			t.Errorf("Load() ExportBatchSize = %v, want 10", cfg.ExportBatchSize)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("DATA_BACKEND", "sqlite")
		os.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		os.Setenv("SESSION_TTL", "45m")
		os.Setenv("EXPORT_BATCH_SIZE", "25")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.SessionTTL != 45*time.Minute {
			t.Errorf("Load() SessionTTL = %v, want 45m", cfg.SessionTTL)
		}
		if cfg.ExportBatchSize != 25 {
			t.Errorf("Load() ExportBatchSize = %v, want 25", cfg.ExportBatchSize)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("EXPORT_BATCH_SIZE", "invalid")
		os.Setenv("SESSION_TTL", "invalid")

		cfg := Load()

		if cfg.ExportBatchSize != 10 {
			t.Errorf("Load() ExportBatchSize = %v, want 10 (default for invalid input)", cfg.ExportBatchSize)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 12h (default for invalid input)", cfg.SessionTTL)
		}
	})
}
