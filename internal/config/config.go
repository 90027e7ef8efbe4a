package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "DEIDENTIFY"

// flagKeys maps CLI flag names to configuration keys
var flagKeys = map[string]string{
	"output-dir": "output.dir",
	"in-place":   "output.in_place",
	"dry-run":    "output.dry_run",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"port":       "server.port",
	"debounce":   "watch.debounce",
}

// envKeys lists scalar keys that can be overridden from the environment
var envKeys = []string{
	"output.dir",
	"output.in_place",
	"output.prefix",
	"output.dry_run",
	"logging.level",
	"logging.format",
	"logging.file.enabled",
	"logging.file.path",
	"watch.debounce",
	"server.port",
	"server.trust_proxy_headers",
	"server.rate_limit.enabled",
	"server.rate_limit.requests_per_min",
	"websocket.enabled",
	"websocket.username",
	"websocket.password",
	"privacy.names.use_role_labels",
}

// Load loads configuration from file, environment variables and changed flags.
// flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	config := GetDefaults()

	v := viper.New()
	v.SetConfigName("deidentify")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("$HOME/.deidentify/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Only flags the user actually set override file and env values
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				v.Set(key, f.Value.String())
			}
		}
	}

	// Lists from the config file replace the defaults rather than merging into them
	zeroFields := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
	if err := v.Unmarshal(config, zeroFields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// knownCategories are the names accepted in privacy.categories
var knownCategories = map[string]bool{
	"all":        true,
	"email":      true,
	"phone":      true,
	"name":       true,
	"identifier": true,
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if len(config.Privacy.Categories) == 0 {
		return fmt.Errorf("no privacy categories enabled")
	}
	for _, c := range config.Privacy.Categories {
		if !knownCategories[c] {
			return fmt.Errorf("unknown privacy category: %s (must be all, email, phone, name or identifier)", c)
		}
	}

	for _, n := range config.Privacy.Names.Known {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("known name entry with empty name")
		}
	}

	if config.Output.InPlace && config.Output.Dir != "" {
		return fmt.Errorf("output dir and in-place are mutually exclusive")
	}

	// An empty prefix next to the source would overwrite it
	if config.Output.Prefix == "" && config.Output.Dir == "" && !config.Output.InPlace {
		return fmt.Errorf("output prefix is required unless an output dir or in-place is set")
	}

	if len(config.Output.Extensions) == 0 {
		return fmt.Errorf("at least one input extension is required")
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	switch config.Logging.Format {
	case "json", "console", "auto":
	default:
		return fmt.Errorf("invalid log format: %s (must be json, console or auto)", config.Logging.Format)
	}

	if config.Watch.Debounce < 0 {
		return fmt.Errorf("invalid watch debounce: %s", config.Watch.Debounce)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.RateLimit.Enabled && config.Server.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("invalid rate limit: %d requests per minute", config.Server.RateLimit.RequestsPerMin)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body size: %d", config.Server.MaxBodyBytes)
	}

	if config.WebSocket.Enabled && !strings.HasPrefix(config.WebSocket.Path, "/") {
		return fmt.Errorf("invalid websocket path: %q (must start with /)", config.WebSocket.Path)
	}

	return nil
}
