// Package obs contains observability utilities such as logging.
package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global structured logger used by the service.
//
// Logger is exported to allow other packages to use it for logging.
var Logger *zap.SugaredLogger

// InitLogger initializes the global Logger with a JSON encoder at info level.
//
// InitLogger is exported to allow other packages to initialize the Logger.
func InitLogger() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	Logger = zap.Must(cfg.Build()).Sugar()
}
