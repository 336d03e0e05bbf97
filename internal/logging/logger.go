// Package logging builds the zap loggers shared by the server components.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger in production and a console logger otherwise.
// Callers own the returned logger and should Sync it on shutdown.
func New(environment string) (*zap.Logger, error) {
	var base zap.Config
	if environment == "production" {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	base.EncoderConfig.TimeKey = "timestamp"
	base.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	base.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return base.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}
