package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)

	cfg, err := Resolve(v)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Host)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
	require.Equal(t, "logs", cfg.LogDir)
}

func TestResolveRejectsBadPort(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)
	require.NoError(t, cmd.Flags().Set("port", "0"))

	_, err := Resolve(v)
	require.Error(t, err)
}

func TestResolveRejectsBadHost(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)
	require.NoError(t, cmd.Flags().Set("host", "not a host!!"))

	_, err := Resolve(v)
	require.Error(t, err)
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("LLM_SHELL_HOST", "0.0.0.0")

	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)

	cfg, err := Resolve(v)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Host)
}

func TestLogDirFlagOverridesDefault(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)
	require.NoError(t, cmd.Flags().Set("log-dir", "/tmp/run-logs"))

	cfg, err := Resolve(v)
	require.NoError(t, err)
	require.Equal(t, "/tmp/run-logs", cfg.LogDir)
}

func TestLogDirEnvOverridesDefault(t *testing.T) {
	t.Setenv("LLM_SHELL_LOG_DIR", "/var/run/llmshell/logs")

	cmd := &cobra.Command{Use: "test"}
	v := Bind(cmd)

	cfg, err := Resolve(v)
	require.NoError(t, err)
	require.Equal(t, "/var/run/llmshell/logs", cfg.LogDir)
}
