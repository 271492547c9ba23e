// Package logger builds the service logger: ectologger's structured API on
// top of a zap core.
package logger

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log output.
type Config struct {
	Level  string
	Pretty bool
}

// New returns an ectologger backed by zap.
func New(cfg Config) (ectologger.Logger, func(), error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Pretty {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	z, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}

	log := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		z.Info("log", zap.Any("entry", msg))
	})

	flush := func() {
		_ = z.Sync()
	}

	return log, flush, nil
}
