package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the SQLite database used as the query executor
// when the extension runs standalone.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ServerConfig controls how tools are served over MCP.
type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport string `mapstructure:"transport" yaml:"transport"`
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`

	// UserHeader names the HTTP header carrying the caller's user id.
	UserHeader string `mapstructure:"user_header" yaml:"user_header"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ProfileConfig is the static user profile served to the extension.
type ProfileConfig struct {
	FirstName string `mapstructure:"first_name" yaml:"first_name"`
	Nickname  string `mapstructure:"nickname" yaml:"nickname"`
	Language  string `mapstructure:"language" yaml:"language"`
	Timezone  string `mapstructure:"timezone" yaml:"timezone"`
}

// MailboxConfig enables delivery of reminder instructions into an IMAP
// mailbox. Password may be left empty and looked up in the OS keyring
// under CredentialKey.
type MailboxConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Host          string `mapstructure:"host" yaml:"host"`
	Port          string `mapstructure:"port" yaml:"port"`
	Username      string `mapstructure:"username" yaml:"username"`
	Password      string `mapstructure:"password" yaml:"password"`
	CredentialKey string `mapstructure:"credential_key" yaml:"credential_key"`
	Mailbox       string `mapstructure:"mailbox" yaml:"mailbox"`
	TLS           bool   `mapstructure:"tls" yaml:"tls"`
	From          string `mapstructure:"from" yaml:"from"`
}

// RemindersConfig tunes reminder scheduling.
type RemindersConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// ChatConfig tunes the in-memory conversation log.
type ChatConfig struct {
	History int `mapstructure:"history" yaml:"history"`
}

// EventsConfig toggles refresh event emission.
type EventsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database      DatabaseConfig           `mapstructure:"database" yaml:"database"`
	Server        ServerConfig             `mapstructure:"server" yaml:"server"`
	Log           LogConfig                `mapstructure:"log" yaml:"log"`
	DefaultUserID string                   `mapstructure:"default_user_id" yaml:"default_user_id"`
	Events        EventsConfig             `mapstructure:"events" yaml:"events"`
	Profiles      map[string]ProfileConfig `mapstructure:"profiles" yaml:"profiles"`
	Mailbox       MailboxConfig            `mapstructure:"mailbox" yaml:"mailbox"`
	Reminders     RemindersConfig          `mapstructure:"reminders" yaml:"reminders"`
	Chat          ChatConfig               `mapstructure:"chat" yaml:"chat"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todo-extension/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todo-extension", "config.yaml")
}

// defaultDatabasePath returns ~/.local/share/todo-extension/todos.db.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "todos.db"
	}
	return filepath.Join(home, ".local", "share", "todo-extension", "todos.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.endpoint", "/mcp")
	v.SetDefault("server.user_header", "X-User-ID")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("default_user_id", "local")
	v.SetDefault("events.enabled", true)
	v.SetDefault("mailbox.port", "993")
	v.SetDefault("mailbox.mailbox", "INBOX")
	v.SetDefault("mailbox.tls", true)
	v.SetDefault("reminders.page_size", 200)
	v.SetDefault("chat.history", 50)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TODOEXT_ override file values
// (TODOEXT_DATABASE_PATH, TODOEXT_LOG_LEVEL, ...). If the file does not
// exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reminders.PageSize <= 0 {
		cfg.Reminders.PageSize = 200
	}
	if cfg.Chat.History <= 0 {
		cfg.Chat.History = 50
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]ProfileConfig{}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)
	v.Set("default_user_id", cfg.DefaultUserID)
	v.Set("events", cfg.Events)
	v.Set("profiles", cfg.Profiles)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("reminders", cfg.Reminders)
	v.Set("chat", cfg.Chat)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
