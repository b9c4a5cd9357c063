package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"salachat/internal/app"
	"salachat/internal/config"
	"salachat/internal/log"
)

var serveFlags struct {
	configPath string
	addr       string
	logLevel   string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bootLog := log.New(serveFlags.logLevel)

		cfg, path, err := config.Load(bootLog, serveFlags.configPath)
		if err != nil {
			return err
		}
		if serveFlags.addr != "" {
			cfg.Addr = serveFlags.addr
		}
		if serveFlags.logLevel != "" {
			cfg.LogLevel = serveFlags.logLevel
		}

		logger := log.New(cfg.LogLevel)
		logger.Info().Str("addr", cfg.Addr).Str("config", path).Msg("starting salachat server")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.New(cfg, logger).Run(ctx); err != nil {
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "", "path to config file")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.AddCommand(serveCmd)
}
