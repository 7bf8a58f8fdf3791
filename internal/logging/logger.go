package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger writing JSON to stderr with service and pid fields.
// Development mode switches to the console encoder at debug level.
func New(environment string) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if environment == "development" {
		level = zapcore.DebugLevel
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)

	return zap.New(core,
		zap.Fields(
			zap.String("service", "floservice-messaging"),
			zap.Int("pid", os.Getpid()),
		),
	)
}
