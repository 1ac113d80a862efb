package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestServerFromEnvSetDefaults(t *testing.T) {
	cfg, err := ServerFromEnvSet(env.EnvSet{})
	require.NoError(t, err)
	require.Equal(t, DefaultServer(), cfg)
}

func TestServerFromEnvSetOverrides(t *testing.T) {
	cfg, err := ServerFromEnvSet(env.EnvSet{
		"CHAT_ADDR":           ":7000",
		"CHAT_METRICS_ADDR":   ":9090",
		"CHAT_QUIT_COMMAND":   "/bye",
		"CHAT_MAX_LINE_BYTES": "128",
		"CHAT_WRITE_TIMEOUT":  "2s",
		"LOG_LEVEL":           "debug",
	})
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Addr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, "/bye", cfg.QuitCommand)
	require.Equal(t, 128, cfg.MaxLineBytes)
	require.Equal(t, 2*time.Second, cfg.WriteTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestServerValidate(t *testing.T) {
	cases := map[string]func(*Server){
		"empty addr":     func(c *Server) { c.Addr = " " },
		"empty quit":     func(c *Server) { c.QuitCommand = "" },
		"zero line size": func(c *Server) { c.MaxLineBytes = 0 },
		"neg timeout":    func(c *Server) { c.WriteTimeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultServer()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestClientFromEnvSet(t *testing.T) {
	cfg, err := ClientFromEnvSet(env.EnvSet{"CHAT_SERVER_ADDR": "10.0.0.1:6000"})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:6000", cfg.ServerAddr)
	require.Equal(t, DefaultQuitCommand, cfg.QuitCommand)
	require.Equal(t, DefaultMaxLineBytes, cfg.MaxLineBytes)

	_, err = ClientFromEnvSet(env.EnvSet{"CHAT_MAX_LINE_BYTES": "-1"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	require.Equal(t, slog.LevelInfo, ParseLevel("loud"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}
