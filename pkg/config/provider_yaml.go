package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func parseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Server: ServerData{
			Cert:       yamlConfig.Server.Cert,
			Key:        yamlConfig.Server.Key,
			ListenAddr: yamlConfig.Server.ListenAddr,
			Port:       yamlConfig.Server.Port,
		},
		Storage: StorageData{
			SQLitePath: yamlConfig.Storage.SQLitePath,
		},
		Location: LocationData{
			Latitude:      yamlConfig.Location.Latitude,
			Longitude:     yamlConfig.Location.Longitude,
			Timezone:      yamlConfig.Location.Timezone,
			City:          yamlConfig.Location.City,
			IPLookupURL:   yamlConfig.Location.IPLookupURL,
			IPTimeout:     yamlConfig.Location.IPTimeout,
			DeviceTimeout: yamlConfig.Location.DeviceTimeout,
			CacheTTL:      yamlConfig.Location.CacheTTL,
		},
		Prayer: PrayerData{
			Method: yamlConfig.Prayer.Method,
			Madhab: yamlConfig.Prayer.Madhab,
		},
	}

	config.ApplyDefaults()
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config, nil
}

// GetServerConfig returns the REST server configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Storage, nil
}

// GetLocationConfig returns location configuration
func (y *YAMLProvider) GetLocationConfig() (*LocationData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Location, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with the dashed key names used in config files
type ConfigYAML struct {
	Server   ServerYAML   `yaml:"server,omitempty"`
	Storage  StorageYAML  `yaml:"storage,omitempty"`
	Location LocationYAML `yaml:"location,omitempty"`
	Prayer   PrayerYAML   `yaml:"prayer,omitempty"`
}

type ServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}

type StorageYAML struct {
	SQLitePath string `yaml:"sqlite-path,omitempty"`
}

type LocationYAML struct {
	Latitude      float64 `yaml:"latitude,omitempty"`
	Longitude     float64 `yaml:"longitude,omitempty"`
	Timezone      string  `yaml:"timezone,omitempty"`
	City          string  `yaml:"city,omitempty"`
	IPLookupURL   string  `yaml:"ip-lookup-url,omitempty"`
	IPTimeout     string  `yaml:"ip-timeout,omitempty"`
	DeviceTimeout string  `yaml:"device-timeout,omitempty"`
	CacheTTL      string  `yaml:"cache-ttl,omitempty"`
}

type PrayerYAML struct {
	Method string `yaml:"method,omitempty"`
	Madhab string `yaml:"madhab,omitempty"`
}
