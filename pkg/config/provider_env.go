package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration
const (
	EnvListenAddr   = "WAQT_LISTEN_ADDR"
	EnvHTTPPort     = "WAQT_HTTP_PORT"
	EnvDBPath       = "WAQT_DB_PATH"
	EnvLatitude     = "WAQT_LAT"
	EnvLongitude    = "WAQT_LON"
	EnvTimezone     = "WAQT_TZ"
	EnvCity         = "WAQT_CITY"
	EnvPrayerMethod = "WAQT_PRAYER_METHOD"
	EnvMadhab       = "WAQT_MADHAB"
)

var envKeys = []string{
	EnvListenAddr, EnvHTTPPort, EnvDBPath, EnvLatitude, EnvLongitude,
	EnvTimezone, EnvCity, EnvPrayerMethod, EnvMadhab,
}

// EnvProvider overlays WAQT_* variables on top of another provider. Values
// come from the given .env files first; the process environment wins over
// them.
type EnvProvider struct {
	base ConfigProvider
	env  map[string]string
}

// NewEnvProvider wraps base. Missing .env files are skipped.
func NewEnvProvider(base ConfigProvider, envFiles ...string) (*EnvProvider, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking env file %s: %w", f, err)
		}
	}

	env := make(map[string]string)
	if len(present) > 0 {
		fileEnv, err := godotenv.Read(present...)
		if err != nil {
			return nil, fmt.Errorf("reading env files: %w", err)
		}
		for _, k := range envKeys {
			if v, ok := fileEnv[k]; ok {
				env[k] = v
			}
		}
	}

	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}

	return &EnvProvider{base: base, env: env}, nil
}

// LoadConfig loads the base configuration and applies the overrides
func (e *EnvProvider) LoadConfig() (*ConfigData, error) {
	c, err := e.base.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := e.apply(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *EnvProvider) apply(c *ConfigData) error {
	str := func(key string, dst *string) {
		if v, ok := e.env[key]; ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) error {
		v, ok := e.env[key]
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
		return nil
	}

	str(EnvListenAddr, &c.Server.ListenAddr)
	str(EnvDBPath, &c.Storage.SQLitePath)
	str(EnvTimezone, &c.Location.Timezone)
	str(EnvCity, &c.Location.City)
	str(EnvPrayerMethod, &c.Prayer.Method)
	str(EnvMadhab, &c.Prayer.Madhab)

	if v, ok := e.env[EnvHTTPPort]; ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPPort, err)
		}
		c.Server.Port = port
	}
	if err := float(EnvLatitude, &c.Location.Latitude); err != nil {
		return err
	}
	if err := float(EnvLongitude, &c.Location.Longitude); err != nil {
		return err
	}
	return nil
}

// GetServerConfig returns the REST server configuration
func (e *EnvProvider) GetServerConfig() (*ServerData, error) {
	c, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// GetStorageConfig returns storage configuration
func (e *EnvProvider) GetStorageConfig() (*StorageData, error) {
	c, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Storage, nil
}

// GetLocationConfig returns location configuration
func (e *EnvProvider) GetLocationConfig() (*LocationData, error) {
	c, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Location, nil
}

func (e *EnvProvider) IsReadOnly() bool {
	return e.base.IsReadOnly()
}

func (e *EnvProvider) Close() error {
	return e.base.Close()
}
