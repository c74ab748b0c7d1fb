package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NATSConfig holds the JetStream settings shared by decode --publish and consume.
type NATSConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
	Consumer      string
	AckWait       time.Duration
	MaxDeliver    int
	MaxAckPending int
	MaxReconnects int
	ReconnectWait time.Duration
}

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In        string
	Out       string
	Errors    string
	LogLevel  string
	SentryDSN string
	Topic0Map map[string]string
	Publish   bool
	NATS      NATSConfig
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("in", "./data/logs.jsonl")
		v.SetDefault("out", "./data/game_events.jsonl")
		v.SetDefault("errors", "./data/decode_errors.jsonl")
		v.SetDefault("publish", false)
		natsDefaults(v)
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		Errors:    v.GetString("errors"),
		LogLevel:  v.GetString("log-level"),
		SentryDSN: v.GetString("sentry-dsn"),
		Topic0Map: getStringMap(v, "topic0-map"),
		Publish:   v.GetBool("publish"),
		NATS:      natsConfig(v),
	}

	return cfg, nil
}

func natsDefaults(v *viper.Viper) {
	v.SetDefault("nats-url", "nats://127.0.0.1:4222")
	v.SetDefault("nats-stream", "GAME_EVENTS")
	v.SetDefault("nats-subject-prefix", "games")
	v.SetDefault("nats-consumer", "indexer")
	v.SetDefault("nats-ack-wait", 30*time.Second)
	v.SetDefault("nats-max-deliver", 5)
	v.SetDefault("nats-max-ack-pending", 1)
	v.SetDefault("nats-max-reconnects", 10)
	v.SetDefault("nats-reconnect-wait", 2*time.Second)
}

func natsConfig(v *viper.Viper) NATSConfig {
	return NATSConfig{
		URL:           v.GetString("nats-url"),
		Stream:        v.GetString("nats-stream"),
		SubjectPrefix: v.GetString("nats-subject-prefix"),
		Consumer:      v.GetString("nats-consumer"),
		AckWait:       v.GetDuration("nats-ack-wait"),
		MaxDeliver:    v.GetInt("nats-max-deliver"),
		MaxAckPending: v.GetInt("nats-max-ack-pending"),
		MaxReconnects: v.GetInt("nats-max-reconnects"),
		ReconnectWait: v.GetDuration("nats-reconnect-wait"),
	}
}
