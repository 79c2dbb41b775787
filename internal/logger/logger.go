package logger

import "go.uber.org/zap"

// New builds a zap logger for the given environment. Production uses the
// JSON encoder; anything else gets the console development config.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	return cfg.Build()
}
