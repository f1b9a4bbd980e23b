package config

import (
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServerConfig() (*ServerData, error)
	GetStorageConfig() (*StorageData, error)
	GetLocationConfig() (*LocationData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData   `json:"server"`
	Storage  StorageData  `json:"storage"`
	Location LocationData `json:"location"`
	Prayer   PrayerData   `json:"prayer"`
}

// ServerData configures the REST server
type ServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}

// StorageData points at the SQLite database holding persisted state
type StorageData struct {
	SQLitePath string `json:"sqlite_path,omitempty"`
}

// LocationData configures location resolution. When Latitude, Longitude and
// Timezone are all set the service starts with that location and skips the
// network lookup.
type LocationData struct {
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	Timezone      string  `json:"timezone,omitempty"`
	City          string  `json:"city,omitempty"`
	IPLookupURL   string  `json:"ip_lookup_url,omitempty"`
	IPTimeout     string  `json:"ip_timeout,omitempty"`
	DeviceTimeout string  `json:"device_timeout,omitempty"`
	CacheTTL      string  `json:"cache_ttl,omitempty"`
}

// PrayerData holds the default prayer settings used until the user saves
// their own.
type PrayerData struct {
	Method string `json:"method,omitempty"`
	Madhab string `json:"madhab,omitempty"`
}

const (
	DefaultListenAddr    = "0.0.0.0"
	DefaultPort          = 8080
	DefaultSQLitePath    = "waqt.db"
	DefaultIPLookupURL   = "https://ipwho.is/?fields=success,message,latitude,longitude,timezone,city"
	DefaultIPTimeout     = time.Second
	DefaultDeviceTimeout = 3 * time.Second
	DefaultCacheTTL      = 24 * time.Hour
)

// HasFixedLocation reports whether a complete static location is configured
func (l LocationData) HasFixedLocation() bool {
	return l.Timezone != "" && (l.Latitude != 0 || l.Longitude != 0)
}

// Timeouts parses the configured durations, substituting defaults for
// missing values.
func (l LocationData) Timeouts() (ip, device, ttl time.Duration, err error) {
	if ip, err = parseDuration(l.IPTimeout, DefaultIPTimeout); err != nil {
		return 0, 0, 0, fmt.Errorf("location.ip_timeout: %w", err)
	}
	if device, err = parseDuration(l.DeviceTimeout, DefaultDeviceTimeout); err != nil {
		return 0, 0, 0, fmt.Errorf("location.device_timeout: %w", err)
	}
	if ttl, err = parseDuration(l.CacheTTL, DefaultCacheTTL); err != nil {
		return 0, 0, 0, fmt.Errorf("location.cache_ttl: %w", err)
	}
	return ip, device, ttl, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// ApplyDefaults fills in unset values
func (c *ConfigData) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}
	if c.Location.IPLookupURL == "" {
		c.Location.IPLookupURL = DefaultIPLookupURL
	}
}

// Validate checks the configuration for values that cannot work
func (c *ConfigData) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server.cert and server.key must be set together")
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude %f out of range", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude %f out of range", c.Location.Longitude)
	}
	if c.Location.Timezone != "" {
		if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
			return fmt.Errorf("location.timezone: %w", err)
		}
	}
	if _, _, _, err := c.Location.Timeouts(); err != nil {
		return err
	}
	return nil
}
