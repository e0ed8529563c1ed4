package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every service log entry as "service".
const ServiceName = "overnight-forecast-service"

// NewLogger builds the service logger: JSON with ISO8601 timestamps, level from
// LOG_LEVEL. LOG_FORMAT=console switches to the human-readable encoder.
func NewLogger() (*zap.Logger, error) {
	cfg := baseConfig()
	cfg.InitialFields = map[string]interface{}{"service": ServiceName}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "console") {
		useConsole(&cfg)
	}
	return cfg.Build()
}

// NewCLILogger builds the logger for the batch commands. Output is always the
// console encoder on stderr so stdout stays free for CSV.
func NewCLILogger(command string) (*zap.Logger, error) {
	cfg := baseConfig()
	useConsole(&cfg)
	cfg.DisableStacktrace = true
	cfg.InitialFields = map[string]interface{}{"command": command}
	return cfg.Build()
}

func baseConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = parseLogLevel(os.Getenv("LOG_LEVEL"))
	return cfg
}

func useConsole(cfg *zap.Config) {
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN", "WARNING":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
