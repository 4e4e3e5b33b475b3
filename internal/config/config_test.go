package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PIXELPRO_ADDR", "PIXELPRO_LOG_LEVEL", "PIXELPRO_LOG_PRETTY", "PIXELPRO_TRACE_EXPORTER",
		"PIXELPRO_OTLP_ENDPOINT", "PIXELPRO_OTLP_INSECURE", "PIXELPRO_DEFAULT_FORMAT", "PIXELPRO_DEFAULT_QUALITY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, "jpeg", cfg.Export.Format)
	assert.Equal(t, 90, cfg.Export.Quality)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIXELPRO_ADDR", "127.0.0.1:9999")
	t.Setenv("PIXELPRO_LOG_PRETTY", "true")
	t.Setenv("PIXELPRO_TRACE_EXPORTER", "otlp")
	t.Setenv("PIXELPRO_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("PIXELPRO_OTLP_INSECURE", "1")
	t.Setenv("PIXELPRO_DEFAULT_FORMAT", "png")
	t.Setenv("PIXELPRO_DEFAULT_QUALITY", "70")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, TracingConfig{Exporter: "otlp", OTLPEndpoint: "localhost:4318", OTLPInsecure: true}, cfg.Tracing)
	assert.Equal(t, ExportConfig{Format: "png", Quality: 70}, cfg.Export)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PIXELPRO_DEFAULT_QUALITY", "high")
	t.Setenv("PIXELPRO_LOG_PRETTY", "maybe")

	cfg := Load()
	assert.Equal(t, 90, cfg.Export.Quality)
	assert.False(t, cfg.Log.Pretty)
}
