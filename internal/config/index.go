package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends accepted by --store.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// IndexConfig holds configuration for the index and consume commands.
type IndexConfig struct {
	In         string
	Store      string
	PGDSN      string
	Snapshot   string
	MaxChains  int
	LaneBuffer int
	LogLevel   string
	SentryDSN  string
	NATS       NATSConfig
}

// LoadIndex merges config file, environment variables, and flags into IndexConfig.
func LoadIndex(cfgFile string, flags *pflag.FlagSet) (IndexConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("in", "./data/game_events.jsonl")
		v.SetDefault("store", StoreMemory)
		v.SetDefault("snapshot", "./data/entities.jsonl")
		v.SetDefault("max-chains", 16)
		v.SetDefault("lane-buffer", 256)
		natsDefaults(v)
	})
	if err != nil {
		return IndexConfig{}, err
	}

	cfg := IndexConfig{
		In:         v.GetString("in"),
		Store:      v.GetString("store"),
		PGDSN:      v.GetString("pg-dsn"),
		Snapshot:   v.GetString("snapshot"),
		MaxChains:  v.GetInt("max-chains"),
		LaneBuffer: v.GetInt("lane-buffer"),
		LogLevel:   v.GetString("log-level"),
		SentryDSN:  v.GetString("sentry-dsn"),
		NATS:       natsConfig(v),
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.PGDSN == "" {
			return IndexConfig{}, fmt.Errorf("pg-dsn is required for store %q", cfg.Store)
		}
	default:
		return IndexConfig{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	return cfg, nil
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Listen    string
	PGDSN     string
	LogLevel  string
	SentryDSN string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("listen", ":8080")
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Listen:    v.GetString("listen"),
		PGDSN:     v.GetString("pg-dsn"),
		LogLevel:  v.GetString("log-level"),
		SentryDSN: v.GetString("sentry-dsn"),
	}
	if cfg.PGDSN == "" {
		return ServeConfig{}, fmt.Errorf("pg-dsn is required")
	}

	return cfg, nil
}
