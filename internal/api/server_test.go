package api

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name       string
		runTimeout time.Duration
		want       time.Duration
	}{
		{name: "folga sobre o limite da execução", runTimeout: 5 * time.Minute, want: 5*time.Minute + 30*time.Second},
		{name: "execução sem limite", runTimeout: 0, want: 0},
		{name: "valor negativo", runTimeout: -time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writeTimeout(tt.runTimeout))
		})
	}
}

func TestNew_WriteTimeoutFollowsRunTimeout(t *testing.T) {
	cfg := &config.Config{
		Server:    config.Server{Host: "127.0.0.1", Port: "0"},
		Ingestion: config.Ingestion{RunTimeout: 0},
	}

	srv, err := New(cfg, nil, nil, nil, metrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, err)
	assert.Zero(t, srv.httpServer.WriteTimeout)
}
