package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"execedge/internal/api"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			a.log.Info("starting api", zap.String("backend", a.cfg.Backend), zap.String("env", a.cfg.Env))
			if !a.cfg.IsProduction() {
				if u, err := a.auth.EnsureUser(ctx, a.userID, a.userID); err == nil {
					a.log.Info("local user", zap.String("user_id", u.ID), zap.String("token", u.Token))
				}
			}
			return api.NewServer(a.svc, a.auth, a.log).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $HTTP_ADDR)")
	return cmd
}
