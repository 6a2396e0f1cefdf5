package bootstrap_test

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/metrics"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := bootstrap.LoadConfig("testdata/missing.yml")
	require.NoError(t, err)
	return cfg
}

func TestSetupEventPublisher_Disabled(t *testing.T) {
	cfg := loadDefaults(t)

	stream := bootstrap.SetupEventPublisher(context.Background(), cfg, logger.NewNop(), metrics.New())
	assert.Nil(t, stream.Publisher)
	assert.Nil(t, stream.Ping)
	assert.NotPanics(t, stream.Close)
}

func TestSetupEventPublisher_UnreachableDisablesEvents(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := loadDefaults(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Address = addr

	stream := bootstrap.SetupEventPublisher(context.Background(), cfg, logger.NewNop(), metrics.New())
	assert.Nil(t, stream.Publisher)
}

func TestSetupEventPublisher_Enabled(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := loadDefaults(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Address = mr.Addr()

	stream := bootstrap.SetupEventPublisher(context.Background(), cfg, logger.NewNop(), metrics.New())
	require.NotNil(t, stream.Publisher)
	require.NotNil(t, stream.Ping)
	require.NoError(t, stream.Ping())

	stream.Close()
	assert.Error(t, stream.Ping())
}

func TestCreateLogger(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Logging.OutputPaths = []string{"stderr"}

	log, err := bootstrap.CreateLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestLoadConfig_InvalidFails(t *testing.T) {
	t.Setenv("OGP_PORT", "99999")

	_, err := bootstrap.LoadConfig("testdata/missing.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.port")
}
