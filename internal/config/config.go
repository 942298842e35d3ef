package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultImage        = "ghcr.io/ledgerhq/speculos"
	defaultReadyTimeout = 120 * time.Second
)

// Config aggregates everything the device manager needs from the environment.
type Config struct {
	// CoinappsRoot is the host directory scanned for app binaries and
	// volume-mounted into every emulator container.
	CoinappsRoot string
	// Seed is the BIP39 phrase every launched device is initialized with.
	Seed string
	// Image is the emulator container image reference.
	Image string
	// ReadyTimeout bounds the wait for the emulator readiness marker.
	// Zero disables the bound.
	ReadyTimeout time.Duration
}

// MissingError reports a required configuration value that was not provided.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration %s (set the %s environment variable)", strings.ToLower(e.Key), e.Key)
}

// Load builds a Config from environment variables plus an optional YAML file.
// COINAPPS and SEED are required; everything else has defaults.
func Load(path string) (Config, error) {
	var cfg Config
	v := viper.New()

	v.SetDefault("image", defaultImage)
	v.SetDefault("ready_timeout", defaultReadyTimeout.String())

	v.SetConfigName("emurig")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an unreadable explicit one is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	// Environment always wins over the file.
	_ = v.BindEnv("coinapps", "COINAPPS")
	_ = v.BindEnv("seed", "SEED")
	_ = v.BindEnv("image", "SPECULOS_IMAGE")
	_ = v.BindEnv("ready_timeout", "EMURIG_READY_TIMEOUT")

	cfg.CoinappsRoot = v.GetString("coinapps")
	cfg.Seed = v.GetString("seed")
	cfg.Image = v.GetString("image")

	if cfg.CoinappsRoot == "" {
		return cfg, &MissingError{Key: "COINAPPS"}
	}
	if cfg.Seed == "" {
		return cfg, &MissingError{Key: "SEED"}
	}

	raw := v.GetString("ready_timeout")
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return cfg, fmt.Errorf("parse ready_timeout %q: %w", raw, err)
	}
	if dur < 0 {
		dur = 0
	}
	cfg.ReadyTimeout = dur

	return cfg, nil
}
