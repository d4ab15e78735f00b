package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/txdecode/server"
)

const defaultBindAddress = "localhost:8090"

var (
	serveAddress string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve POST /decode, GET /result/latest, GET /networks and, when
metrics_enabled is set, GET /metrics.

Use --config=path-to-your-config-file. --addr overrides http_bind_address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if serveAddress != "" {
				a.config.HttpBindAddress = serveAddress
			}
			if a.config.HttpBindAddress == "" {
				a.config.HttpBindAddress = defaultBindAddress
			}

			return server.New(a.config, a.dispatcher, a.registry, a.config.Logger.With("component", "http")).Start(ctx)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "addr", "", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
