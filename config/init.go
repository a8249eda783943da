package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Application configuration. Extend as the project grows.
type Config struct {
	Server struct {
		Address  string `mapstructure:"address"`   // 0.0.0.0
		HTTPPort string `mapstructure:"http_port"` // 8080
	} `mapstructure:"server"`

	Firestore struct {
		ProjectID         string `mapstructure:"project_id"`         // GCP project
		CredentialsFile   string `mapstructure:"credentials_file"`   // service account JSON; empty uses ADC
		ServersCollection string `mapstructure:"servers_collection"` // "servers"
		DevicesCollection string `mapstructure:"devices_collection"` // "devices"
	} `mapstructure:"firestore"`

	Auth struct {
		Token string `mapstructure:"token"` // static bearer token for /api; empty disables auth
	} `mapstructure:"auth"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // path/prefix of the log file; empty logs to stdout only
	} `mapstructure:"logs"`
}

// Load reads config from env/file with defaults.
func Load() (*Config, error) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults (minimal working set)
	viper.SetDefault("server.address", "0.0.0.0")
	viper.SetDefault("server.http_port", "8080")

	viper.SetDefault("firestore.project_id", "")
	viper.SetDefault("firestore.credentials_file", "")
	viper.SetDefault("firestore.servers_collection", "servers")
	viper.SetDefault("firestore.devices_collection", "devices")

	viper.SetDefault("auth.token", "")

	viper.SetDefault("logs.level", "info")
	viper.SetDefault("logs.format", "text")
	viper.SetDefault("logs.file", "")

	// File source
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "tropical"))
		}
		viper.AddConfigPath("/etc/tropical")
	}

	// Reading the file is optional
	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.Firestore.ProjectID) == "" {
		return errors.New("firestore.project_id must be set")
	}
	if strings.TrimSpace(c.Firestore.ServersCollection) == "" {
		return errors.New("firestore.servers_collection must not be empty")
	}
	if strings.TrimSpace(c.Firestore.DevicesCollection) == "" {
		return errors.New("firestore.devices_collection must not be empty")
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("server.http_port must not be empty")
	}
	return nil
}
