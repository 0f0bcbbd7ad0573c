package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voting-settlement/config"
)

func TestServeFlagsOnRootAndServe(t *testing.T) {
	for _, cmd := range []struct {
		name string
		args []string
		want string
	}{
		{
			name: "root",
			args: []string{"--listen", "127.0.0.1:8080", "--settlement-timeout", "30s"},
			want: "127.0.0.1:8080",
		},
		{
			name: "serve",
			args: []string{"--listen", "127.0.0.1:9090", "--settlement-timeout", "30s"},
			want: "127.0.0.1:9090",
		},
	} {
		t.Run(cmd.name, func(t *testing.T) {
			c := rootCmd
			if cmd.name == "serve" {
				c = serveCmd
			}

			require.NoError(t, c.ParseFlags(cmd.args))
			require.NoError(t, bindServeFlags(c.Flags()))

			cfg, err := config.LoadServer(v, "")
			require.NoError(t, err)
			require.Equal(t, cmd.want, cfg.ListenAddr)
			require.Equal(t, 30*time.Second, cfg.SettlementTimeout)
		})
	}
}

func TestRootFindsServeFlags(t *testing.T) {
	for _, name := range []string{"listen", "settlement-timeout", "receipt-store", "receipt-path"} {
		require.NotNil(t, rootCmd.Flags().Lookup(name), name)
		require.NotNil(t, serveCmd.Flags().Lookup(name), name)
	}
}
