package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aanand-mishra/student-records/internal/config"
)

// setupLogger returns a *zap.Logger configured for the given environment.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
//
// Logs go to out rather than stdout so list and export output stays clean.
func setupLogger(env string, out zapcore.WriteSyncer) *zap.Logger {
	var (
		encoder zapcore.Encoder
		level   zapcore.Level
	)

	switch env {
	case config.EnvProd:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		level = zapcore.InfoLevel
	case config.EnvStaging:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		level = zapcore.DebugLevel
	default: // "dev" and anything unrecognised
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()).With(zap.String("env", env))
}
