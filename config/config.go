package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// MaxRequestsPerMinute is the documented Ticketmaster Discovery API rate
// limit. It is not enforced client-side.
const MaxRequestsPerMinute = 60

// Config holds all application configuration. It is constructed once at
// process entry and passed into every component constructor.
type Config struct {
	Ticketmaster TicketmasterConfig `mapstructure:"ticketmaster"`
	DB           DatabaseConfig     `mapstructure:"database"`
}

// TicketmasterConfig holds Ticketmaster Discovery API settings
type TicketmasterConfig struct {
	APIKey  string `mapstructure:"api_key" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// DatabaseConfig holds database configuration. URL is either a postgres://
// connection string or a path to a local sqlite file.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Setup configuration paths
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Missing config files are fine - ENV vars and defaults still apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Enable environment variables to override config
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate checks that required configuration is present. A missing API key
// is a fatal startup condition for every command.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults sets default values for configuration. Every key gets a
// default so that environment overrides are always picked up.
func setDefaults(v *viper.Viper) {
	// Ticketmaster settings
	v.SetDefault("ticketmaster.api_key", "")
	v.SetDefault("ticketmaster.base_url", "https://app.ticketmaster.com/discovery/v2")

	// Database settings: a local file-backed sqlite store by default
	v.SetDefault("database.url", "ticket_tracker.db")
}
