package storage

import (
	"os"
	"testing"

	"tajeer-server/pkg/config"
	"tajeer-server/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "storage_test"}})
	os.Exit(m.Run())
}
