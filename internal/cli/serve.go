package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the authenticated JSON API.

Requires http.jwt_secret (or QUESTLINE_JWT_SECRET). Prometheus metrics are
served on /metrics and a liveness probe on /healthz.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = wire.Config().HTTP.Addr
			}

			srv, err := wire.HTTPServer()
			if err != nil {
				return err
			}
			defer wire.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: http.addr)")
	return cmd
}
