package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		NumNodes:  2,
		NodeID:    0,
		Hostnames: []string{"a", "b"},
		N:         10000,
		B:         10,
		K:         100,
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsNodeIDOutOfRange(t *testing.T) {
	c := validConfig()
	c.NodeID = 5
	assert.Error(t, c.Validate())
}

func TestValidateRejectsHostnameCountMismatch(t *testing.T) {
	c := validConfig()
	c.Hostnames = []string{"only-one"}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsDegenerateTopKWindow(t *testing.T) {
	c := validConfig()
	c.N = 5
	c.B = 10
	assert.Error(t, c.Validate())
}

func TestLoadAppliesDefaultsAndFileOverrides(t *testing.T) {
	path := writeTempYAML(t, `
num-nodes: 2
node-id: 1
hostnames: ["a", "b"]
hwm: 2000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.StartingPort, "unset options keep their default")
	assert.Equal(t, 2000, cfg.HWM, "file override replaces the default")
	assert.Equal(t, 1, cfg.NodeID)
}

func TestLoadAppliesEnvOverrideOnTopOfFile(t *testing.T) {
	path := writeTempYAML(t, `
num-nodes: 2
node-id: 0
hostnames: ["a", "b"]
`)
	require.NoError(t, os.Setenv("SAM_HWM", "4096"))
	defer os.Unsetenv("SAM_HWM")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.HWM)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeTempYAML(t, `
num-nodes: 2
node-id: 9
hostnames: ["a", "b"]
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sam-config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}
