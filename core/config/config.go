package config

import (
	"fmt"
	"os"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/AvaProtocol/txdecode/pkg/logger"
)

const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultCooldown       = 500 * time.Millisecond
	DefaultRegistryURL    = "https://www.4byte.directory/api/v1/signatures/"
	DefaultCoalesce       = "ignore"
)

// Config is the resolved runtime configuration shared by the CLI and the HTTP API.
type Config struct {
	Environment sdklogging.LogLevel
	Logger      sdklogging.Logger

	// every outbound call (node or registry) gets its own timeout of this length
	RequestTimeout time.Duration
	RegistryURL    string

	// trigger boundary policy, one of none, ignore, restart
	Coalesce string
	Cooldown time.Duration

	HttpBindAddress string
	MetricsEnabled  bool

	// error reporting for the HTTP server, disabled when SentryDsn is empty
	SentryDsn  string
	ServerName string

	// OTLP/HTTP collector for pipeline spans, tracing is off when empty
	OtlpEndpoint string

	// allow-list of endpoints a decode request can target
	Networks []Network
}

// These are read from the config file
type ConfigRaw struct {
	Environment     sdklogging.LogLevel `yaml:"environment" validate:"omitempty,oneof=development production"`
	RequestTimeout  time.Duration       `yaml:"request_timeout" validate:"gte=0"`
	RegistryURL     string              `yaml:"registry_url" validate:"omitempty,url"`
	Coalesce        string              `yaml:"coalesce" validate:"omitempty,oneof=none ignore restart"`
	Cooldown        *time.Duration      `yaml:"cooldown"`
	HttpBindAddress string              `yaml:"http_bind_address"`
	MetricsEnabled  bool                `yaml:"metrics_enabled"`
	SentryDsn       string              `yaml:"sentry_dsn" validate:"omitempty,url"`
	ServerName      string              `yaml:"server_name"`
	OtlpEndpoint    string              `yaml:"otlp_endpoint"`
	Networks        []Network           `yaml:"networks" validate:"dive"`
}

// NewConfig reads configFilePath, falling back to defaults for anything the
// file leaves out. An empty path yields the default configuration. A .env
// file in the working directory is loaded first so the YAML can reference
// ${VARS} such as private RPC keys.
func NewConfig(configFilePath string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	var configRaw ConfigRaw
	if configFilePath != "" {
		if err := readYamlConfig(configFilePath, &configRaw); err != nil {
			return nil, err
		}
	}

	return newConfigFromRaw(configRaw)
}

func newConfigFromRaw(configRaw ConfigRaw) (*Config, error) {
	if err := validator.New().Struct(configRaw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	environment := configRaw.Environment
	if environment == "" {
		environment = sdklogging.Production
	}

	log, err := logger.New(string(environment))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment:     environment,
		Logger:          log,
		RequestTimeout:  configRaw.RequestTimeout,
		RegistryURL:     configRaw.RegistryURL,
		Coalesce:        configRaw.Coalesce,
		Cooldown:        DefaultCooldown,
		HttpBindAddress: configRaw.HttpBindAddress,
		MetricsEnabled:  configRaw.MetricsEnabled,
		SentryDsn:       configRaw.SentryDsn,
		ServerName:      configRaw.ServerName,
		OtlpEndpoint:    configRaw.OtlpEndpoint,
		Networks:        configRaw.Networks,
	}

	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.RegistryURL == "" {
		config.RegistryURL = DefaultRegistryURL
	}
	if config.Coalesce == "" {
		config.Coalesce = DefaultCoalesce
	}
	if configRaw.Cooldown != nil {
		config.Cooldown = *configRaw.Cooldown
	}
	if len(config.Networks) == 0 {
		config.Networks = DefaultNetworks()
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Networks))
	for _, n := range c.Networks {
		if seen[n.Name] {
			return fmt.Errorf("invalid config: network %q is listed twice", n.Name)
		}
		seen[n.Name] = true
	}
	return nil
}

func readYamlConfig(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}
