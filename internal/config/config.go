package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Tracing TracingConfig
	Export  ExportConfig
}

type ServerConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

// ExportConfig holds the export selection a new session starts with.
type ExportConfig struct {
	Format  string
	Quality int
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr: env("PIXELPRO_ADDR", "127.0.0.1:8080"),
		},
		Log: LogConfig{
			Level:  env("PIXELPRO_LOG_LEVEL", "info"),
			Pretty: envBool("PIXELPRO_LOG_PRETTY", false),
		},
		Tracing: TracingConfig{
			Exporter:     env("PIXELPRO_TRACE_EXPORTER", "none"),
			OTLPEndpoint: env("PIXELPRO_OTLP_ENDPOINT", ""),
			OTLPInsecure: envBool("PIXELPRO_OTLP_INSECURE", false),
		},
		Export: ExportConfig{
			Format:  env("PIXELPRO_DEFAULT_FORMAT", "jpeg"),
			Quality: envInt("PIXELPRO_DEFAULT_QUALITY", 90),
		},
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
