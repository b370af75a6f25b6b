package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/campaign-checkin-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check in and claim tasks for every account, once per cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r, err := wireRunner(v, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = r.logger.Sync() }()

			proxy := r.proxy
			if proxy == "" {
				proxy = "none"
			}
			r.logger.Info("starting campaign check-in",
				zap.Int("accounts", r.accounts),
				zap.String("proxy", proxy),
				zap.Bool("once", once))

			maxPasses := 0
			if once {
				maxPasses = 1
			}

			err = r.orchestrator.Run(ctx, maxPasses)
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				r.logger.Info("stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")
	cmd.Flags().String("keys", "private_keys.txt", "File with one private key per line")
	cmd.Flags().Bool("proxy", false, "Route traffic through the first valid proxy in the proxy file")
	cmd.Flags().String("proxy-file", "proxy.txt", "File with one proxy URL per line")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		config.KeyAccountsFile: "keys",
		config.KeyProxyEnabled: "proxy",
		config.KeyProxyFile:    "proxy-file",
		config.KeyLogLevel:     "log-level",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}
