package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
service_name = "pricing"

[database]
dsn = "root:root@tcp(127.0.0.1:3306)/pricing"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, 9000, cfg.GRPC.Port)
	assert.Equal(t, "pricing.events", cfg.Kafka.Topic)
	assert.Equal(t, "BLACK_SCHOLES", cfg.Pricing.DefaultModel)
	assert.Equal(t, 100, cfg.Pricing.BinomialSteps)
	assert.Equal(t, 250, cfg.Pricing.VaRScenarios)
	assert.Equal(t, int64(1), cfg.Pricing.NodeID)
	assert.Empty(t, cfg.Pricing.ExoticEngineURL)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PRICING_BINOMIAL_STEPS", "400")
	t.Setenv("APP_PRICING_EXOTIC_ENGINE_URL", "http://engine:9000")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Pricing.BinomialSteps)
	assert.Equal(t, "http://engine:9000", cfg.Pricing.ExoticEngineURL)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing service":   "[database]\ndsn = \"x\"\n",
		"missing dsn":       "service_name = \"pricing\"\n",
		"steps too large":   minimal + "\n[pricing]\nbinomial_steps = 20000\n",
		"too few scenarios": minimal + "\n[pricing]\nvar_scenarios = 5\n",
		"node out of range": minimal + "\n[pricing]\nnode_id = 2048\n",
		"bad port":          minimal + "\n[http]\nport = 70000\n",
		"grpc port clash":   minimal + "\n[grpc]\nport = 8080\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)

	// 缺少配置文件时仍需 service_name 与 dsn
	_, err = LoadWithDefaults(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorContains(t, err, "service_name is required")
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "pricing", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, []string{"127.0.0.1:9092"}, cfg.Kafka.Brokers)
}
