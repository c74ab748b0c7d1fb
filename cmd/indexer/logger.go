package main

import (
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the production JSON logger. With a Sentry DSN, error
// entries are also reported to Sentry and info entries become breadcrumbs.
// The returned flush must run before exit.
func newLogger(level, sentryDSN string) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	if sentryDSN == "" {
		return logger, func() { _ = logger.Sync() }, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: sentryDSN})
	if err != nil {
		return nil, nil, err
	}

	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
		Tags:              map[string]string{"component": "indexer"},
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return nil, nil, err
	}

	logger = zapsentry.AttachCoreToLogger(core, logger)
	return logger, func() {
		_ = logger.Sync()
		client.Flush(2 * time.Second)
	}, nil
}
