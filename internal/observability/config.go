package observability

import (
	"strings"

	"github.com/smallbiznis/salesdash/internal/config"
)

// Config is the observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "salesdash"
	}
	tel := cfg.Telemetry
	logLevel := tel.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := tel.LogFormat
	if logFormat == "" {
		logFormat = "json"
	}
	protocol := tel.OtelProtocol
	if protocol == "" {
		protocol = "grpc"
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             logLevel,
		LogFormat:            logFormat,
		OtelEnabled:          tel.OtelEnabled,
		OtelExporterEndpoint: tel.OtelEndpoint,
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    tel.SamplingRatio,
	}
}

// Debug is true for debug level or any non-production style environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
