package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, 200, cfg.MaxUploadRows)
	require.Nil(t, cfg.KafkaBrokers)
	require.Equal(t, "portal.audit", cfg.AuditTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("MAX_UPLOAD_ROWS", "50")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092 ,")

	cfg := Load()
	require.Equal(t, ":9999", cfg.HTTPAddress)
	require.Equal(t, 50, cfg.MaxUploadRows)
	require.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("MAX_UPLOAD_ROWS", "plenty")
	cfg := Load()
	require.Equal(t, 200, cfg.MaxUploadRows)
}
