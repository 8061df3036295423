package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxConfigurableStrobeHz is the highest strobe frequency the configuration may
// request. It mirrors the hardware ceiling enforced independently by the strobe
// controller; raising this value here does not raise the applied ceiling.
const maxConfigurableStrobeHz = 10.0

// Config is the root configuration structure for Kinesis Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Safety    SafetyConfig    `yaml:"safety"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// SiteConfig identifies the installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SafetyConfig contains the hard operating limits for the installation.
//
// These values are read once at startup and are not mutable at runtime.
// StrobeMaxHz can never exceed the hardware ceiling: the strobe controller
// re-clamps it independently of this configuration.
type SafetyConfig struct {
	// StrobeMaxHz is the maximum strobe pulse frequency the installation may emit.
	StrobeMaxHz float64 `yaml:"strobe_max_hz"`

	// SessionMaxS is the hard session duration cutoff in seconds.
	SessionMaxS int `yaml:"session_max_s"`

	// FadeOutS is the length of the fade-out window at the end of a session,
	// in seconds. Must be less than SessionMaxS.
	FadeOutS int `yaml:"fade_out_s"`

	// ConsentHoldMS is the continuous hold duration required on the consent
	// input before the installation activates, in milliseconds.
	ConsentHoldMS int `yaml:"consent_hold_ms"`

	// TickMS is the control loop period in milliseconds.
	TickMS int `yaml:"tick_ms"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains operator token settings.
//
// The API issues short-lived JWTs against the operator key. Safety actions
// (stop, status, health) are never gated on authentication.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	OperatorKey    string `yaml:"operator_key"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: KINESIS_SECTION_KEY
// For example: KINESIS_DATABASE_PATH, KINESIS_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "installation-001",
			Name: "Kinesis",
		},
		Safety: SafetyConfig{
			StrobeMaxHz:   4.0,
			SessionMaxS:   660,
			FadeOutS:      120,
			ConsentHoldMS: 3000,
			TickMS:        20,
		},
		Database: DatabaseConfig{
			Path:        "./data/kinesis.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "kinesis-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: KINESIS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("KINESIS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("KINESIS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("KINESIS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("KINESIS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("KINESIS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("KINESIS_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("KINESIS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (always override in production)
	if v := os.Getenv("KINESIS_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("KINESIS_OPERATOR_KEY"); v != "" {
		cfg.Security.JWT.OperatorKey = v
	}
}

// Validate checks the configuration for errors and safety violations.
//
// Safety limits get the strictest treatment: a configuration that asks for a
// strobe ceiling above the hardware limit, a too-short consent hold, or a fade
// window longer than the session is rejected outright rather than corrected.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Safety validation. These bounds protect participants; none of them may
	// be loosened through configuration.
	if c.Safety.StrobeMaxHz <= 0 {
		errs = append(errs, "safety.strobe_max_hz must be positive")
	}
	if c.Safety.StrobeMaxHz > maxConfigurableStrobeHz {
		errs = append(errs, fmt.Sprintf("safety.strobe_max_hz must not exceed %.1f (hardware ceiling)", maxConfigurableStrobeHz))
	}
	if c.Safety.SessionMaxS <= 0 {
		errs = append(errs, "safety.session_max_s must be positive")
	}
	if c.Safety.FadeOutS < 0 || c.Safety.FadeOutS >= c.Safety.SessionMaxS {
		errs = append(errs, "safety.fade_out_s must be non-negative and less than session_max_s")
	}
	if c.Safety.ConsentHoldMS < 1000 {
		errs = append(errs, "safety.consent_hold_ms must be at least 1000")
	}
	if c.Safety.TickMS < 5 || c.Safety.TickMS > 100 {
		errs = append(errs, "safety.tick_ms must be between 5 and 100")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Security validation - JWT secret is required because the API can
	// reprogram a physical installation.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set KINESIS_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}
	if c.Security.JWT.OperatorKey == "" {
		errs = append(errs, "security.jwt.operator_key is required (set KINESIS_OPERATOR_KEY environment variable)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TickPeriod returns the control loop period as a Duration.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Safety.TickMS) * time.Millisecond
}

// SessionMax returns the hard session cutoff as a Duration.
func (c *Config) SessionMax() time.Duration {
	return time.Duration(c.Safety.SessionMaxS) * time.Second
}

// FadeOut returns the fade-out window length as a Duration.
func (c *Config) FadeOut() time.Duration {
	return time.Duration(c.Safety.FadeOutS) * time.Second
}

// ConsentHold returns the required consent hold duration as a Duration.
func (c *Config) ConsentHold() time.Duration {
	return time.Duration(c.Safety.ConsentHoldMS) * time.Millisecond
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
