package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tradeyard/storefront/internal/constants"
	"github.com/tradeyard/storefront/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/storefront.log").
		With().
		Str(log.KEY_APP_NAME, constants.APP_STOREFRONT_SERVICE).
		Str(log.KEY_TAG, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "storefront",
		Short: "Run storefront service",
		Run: func(cmd *cobra.Command, args []string) {
			RunStorefrontService(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
