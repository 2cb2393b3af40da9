// Package config resolves the listen address, working directory and log
// directory from command-line flags or LLM_SHELL_-prefixed environment
// variables, via cobra for the command surface and viper for env binding.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/llmshell/supervisor/pkg/hostutil"
)

const envPrefix = "LLM_SHELL"

// Config is the resolved, validated runtime configuration.
type Config struct {
	Host    string
	Port    int
	WorkDir string
	LogDir  string
}

// Bind registers --host/--port/--workdir/--log-dir flags on cmd and
// returns a viper instance that also reads LLM_SHELL_HOST /
// LLM_SHELL_PORT / LLM_SHELL_WORKDIR / LLM_SHELL_LOG_DIR from the
// environment, with flags taking precedence when explicitly set.
func Bind(cmd *cobra.Command) *viper.Viper {
	flags := cmd.Flags()
	flags.String("host", "127.0.0.1", "listen host")
	flags.Int("port", 8080, "listen port")
	flags.String("workdir", ".", "working directory for spawned children")
	flags.String("log-dir", "logs", "directory for per-run log files")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("host", flags.Lookup("host"))
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("workdir", flags.Lookup("workdir"))
	_ = v.BindPFlag("log-dir", flags.Lookup("log-dir"))

	return v
}

// Resolve reads the bound flags/environment off v and validates them.
func Resolve(v *viper.Viper) (Config, error) {
	cfg := Config{
		Host:    v.GetString("host"),
		Port:    v.GetInt("port"),
		WorkDir: v.GetString("workdir"),
		LogDir:  v.GetString("log-dir"),
	}

	if err := hostutil.ValidateHost(cfg.Host); err != nil {
		return Config{}, fmt.Errorf("invalid host: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	return cfg, nil
}

// Addr formats the resolved listen address for net/http.Server.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
