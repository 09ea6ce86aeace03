package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// TreeConfig describes one configured rocks tree.
type TreeConfig struct {
	Root     string `mapstructure:"root"`
	Priority int    `mapstructure:"priority"`
}

// DeployConfig holds the three deployment roots files are linked into.
type DeployConfig struct {
	LuaDir string `mapstructure:"lua_dir"`
	LibDir string `mapstructure:"lib_dir"`
	BinDir string `mapstructure:"bin_dir"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	LuaVersion        string        `mapstructure:"lua_version"`
	SupportedVersions []string      `mapstructure:"supported_versions"`
	DepsMode          string        `mapstructure:"deps_mode"`
	CacheDir          string        `mapstructure:"cache_dir"`
	CacheTTLHours     int           `mapstructure:"cache_ttl_hours"`
	Trees             []TreeConfig  `mapstructure:"trees"`
	Deploy            DeployConfig  `mapstructure:"deploy"`
	Logging           LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/rockyard/config.yaml
//   - $HOME/.config/rockyard/config.yaml
//
// Environment variables are prefixed with ROCKYARD_ (e.g.
// ROCKYARD_LUA_VERSION).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "rockyard"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "rockyard"))

	v.SetEnvPrefix("ROCKYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i, tree := range cfg.Trees {
		if strings.HasPrefix(tree.Root, "~") {
			cfg.Trees[i].Root = filepath.Join(homeDir, tree.Root[1:])
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("lua_version", DefaultLuaVersion)
	v.SetDefault("supported_versions", DefaultSupportedVersions)
	v.SetDefault("deps_mode", DefaultDepsMode)
	v.SetDefault("cache_dir", filepath.Join(xdg.CacheHome, "rockyard"))
	v.SetDefault("cache_ttl_hours", DefaultCacheTTLHours)

	defaultRoot := filepath.Join(homeDir, ".rockyard")
	v.SetDefault("trees", []map[string]any{{"root": defaultRoot, "priority": 0}})
	v.SetDefault("deploy.lua_dir", filepath.Join(defaultRoot, "share", "lua"))
	v.SetDefault("deploy.lib_dir", filepath.Join(defaultRoot, "lib", "lua"))
	v.SetDefault("deploy.bin_dir", filepath.Join(defaultRoot, "bin"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
}

// DefaultTree returns the tree with the lowest priority value, which is
// the one installs and manifest rebuilds target by default.
func (c *Config) DefaultTree() (TreeConfig, error) {
	if len(c.Trees) == 0 {
		return TreeConfig{}, errors.New("no rocks trees configured")
	}
	best := c.Trees[0]
	for _, tree := range c.Trees[1:] {
		if tree.Priority < best.Priority {
			best = tree
		}
	}
	return best, nil
}
