// Package appconfig resolves schlussel's runtime configuration from
// flags, environment variables, and a YAML config file, in that order
// of precedence, via spf13/viper.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/pepicrft/schlussel/internal/credstore"
)

// Config is the resolved runtime configuration.
type Config struct {
	// AppName names the application for base-directory resolution
	// (credential store location, lock directory). Defaults to
	// "schlussel"; overridable for white-labeled embeddings.
	AppName string

	// StoreKind selects the credential store backend.
	StoreKind credstore.Kind

	// RefreshTheta is the default refresh threshold fraction (§4.F).
	// 0 means refresh only on expiry.
	RefreshTheta float64

	// HTTPTimeoutSeconds is resolved from configuration (default 30). No
	// OAuth HTTP call reads it; oauthflow's requests are not bounded by it.
	HTTPTimeoutSeconds int

	// Debug enables verbose logging.
	Debug bool
}

const (
	defaultAppName            = "schlussel"
	defaultRefreshTheta       = 0.1
	defaultHTTPTimeoutSeconds = 30
)

// Defaults returns the configuration used when no flag, environment
// variable, or config file overrides a field.
func Defaults() Config {
	return Config{
		AppName:            defaultAppName,
		StoreKind:          credstore.KindSecure,
		RefreshTheta:       defaultRefreshTheta,
		HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
		Debug:              false,
	}
}

// Load resolves the configuration from v, which the caller has already
// bound to cobra persistent flags and told about SCHLUSSEL_-prefixed
// environment variables. configPath, if non-empty, overrides the
// default config file location of
// $XDG_CONFIG_HOME/schlussel/config.yaml.
func Load(v *viper.Viper, configPath string) (Config, error) {
	cfg := Defaults()

	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("store", string(cfg.StoreKind))
	v.SetDefault("refresh_theta", cfg.RefreshTheta)
	v.SetDefault("http_timeout_seconds", cfg.HTTPTimeoutSeconds)
	v.SetDefault("debug", cfg.Debug)

	if configPath == "" {
		configHome, err := xdg.ConfigFile(filepath.Join(defaultAppName, "config.yaml"))
		if err == nil {
			configPath = configHome
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file %s: %w", configPath, err)
			}
		}
	}

	cfg.AppName = v.GetString("app_name")
	cfg.StoreKind = credstore.Kind(v.GetString("store"))
	cfg.RefreshTheta = v.GetFloat64("refresh_theta")
	cfg.HTTPTimeoutSeconds = v.GetInt("http_timeout_seconds")
	cfg.Debug = v.GetBool("debug")

	if err := validateStoreKind(cfg.StoreKind); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateStoreKind(kind credstore.Kind) error {
	switch kind {
	case credstore.KindMemory, credstore.KindFile, credstore.KindSecure:
		return nil
	default:
		return fmt.Errorf("unknown credential store backend %q", kind)
	}
}

// LockDir returns the cross-process lock directory for the configured
// app name, resolved under $XDG_RUNTIME_DIR when it is set and under the
// XDG cache directory otherwise.
func (c Config) LockDir() (string, error) {
	resolve := xdg.CacheFile
	if os.Getenv("XDG_RUNTIME_DIR") != "" {
		resolve = xdg.RuntimeFile
	}
	dir, err := resolve(filepath.Join(c.AppName, "locks", ".keep"))
	if err != nil {
		return "", fmt.Errorf("resolve lock directory: %w", err)
	}
	return filepath.Dir(dir), nil
}
