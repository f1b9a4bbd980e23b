package config

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/waqt/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationTable = "config_migrations"

// SQLiteProvider implements ConfigProvider on top of the service's SQLite
// database. The configuration is stored as a single JSON document.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := migrate.New(db, migrations, "migrations", migrationTable, nil).Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate config schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database. An empty
// database yields the defaults.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM config WHERE id = 1`).Scan(&raw)

	config := &ConfigData{}
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query config: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), config); err != nil {
			return nil, fmt.Errorf("failed to decode stored config: %w", err)
		}
	}

	config.ApplyDefaults()
	return config, nil
}

// SaveConfig replaces the stored configuration
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid config: %w", err)
	}

	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO config (id, data, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		string(data))
	if err != nil {
		return fmt.Errorf("failed to store config: %w", err)
	}
	return nil
}

// GetServerConfig returns the REST server configuration
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	c, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// GetStorageConfig returns storage configuration. SQLitePath always reports
// the database this provider reads from.
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	c, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	c.Storage.SQLitePath = s.dbPath
	return &c.Storage, nil
}

// GetLocationConfig returns location configuration
func (s *SQLiteProvider) GetLocationConfig() (*LocationData, error) {
	c, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Location, nil
}

// IsReadOnly returns false since the SQLite provider supports SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
