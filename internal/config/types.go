package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// PrivacyConfig contains the deidentification engine configuration
type PrivacyConfig struct {
	// Categories lists the enabled categories, or "all"
	Categories []string    `yaml:"categories" mapstructure:"categories"`
	Names      NamesConfig `yaml:"names" mapstructure:"names"`
}

// NamesConfig contains the name tables used by the name matcher
type NamesConfig struct {
	Known         []KnownName `yaml:"known" mapstructure:"known"`
	Common        []string    `yaml:"common" mapstructure:"common"`
	UseRoleLabels bool        `yaml:"use_role_labels" mapstructure:"use_role_labels"`
}

// KnownName maps a specific full name to a role label
type KnownName struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Label string `yaml:"label" mapstructure:"label"`
}

// OutputConfig controls where scrubbed documents are written
type OutputConfig struct {
	Dir        string   `yaml:"dir" mapstructure:"dir"`
	InPlace    bool     `yaml:"in_place" mapstructure:"in_place"`
	Prefix     string   `yaml:"prefix" mapstructure:"prefix"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	DryRun     bool     `yaml:"dry_run" mapstructure:"dry_run"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json, console or auto
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WatchConfig contains directory watcher configuration
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// TrustProxyHeaders keys rate limiting on X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" mapstructure:"trust_proxy_headers"`

	RateLimit struct {
		Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
		Burst          int  `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// WebSocketConfig contains WebSocket event feed configuration
type WebSocketConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Events   struct {
		BroadcastDocuments   bool `yaml:"broadcast_documents" mapstructure:"broadcast_documents"`
		BroadcastSystem      bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// DefaultKnownNames is the seed table of known full names
var DefaultKnownNames = []KnownName{
	{Name: "Zoe W", Label: "Participant A"},
	{Name: "James B", Label: "Participant B"},
	{Name: "Jason W", Label: "Participant C"},
	{Name: "John Smith", Label: "Participant D"},
}

// DefaultCommonNames is the seed list of standalone first names
var DefaultCommonNames = []string{
	"Zoe", "James", "Jason", "John", "Jane", "Michael", "Sarah",
	"David", "Lisa", "Robert", "Mary", "William", "Patricia",
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Privacy: PrivacyConfig{
			Categories: []string{"all"},
			Names: NamesConfig{
				Known:  append([]KnownName(nil), DefaultKnownNames...),
				Common: append([]string(nil), DefaultCommonNames...),
			},
		},
		Output: OutputConfig{
			Prefix:     "deidentified_",
			Extensions: []string{".md"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 10 << 20,
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
			Path:    "/ws",
		},
	}

	cfg.Logging.File.Path = "logs/deidentify.log"

	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerMin = 120
	cfg.Server.RateLimit.Burst = 20

	cfg.WebSocket.Events.BroadcastDocuments = true
	cfg.WebSocket.Events.BroadcastSystem = true
	cfg.WebSocket.Events.BroadcastConnections = true

	return cfg
}
