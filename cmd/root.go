package cmd

import (
	"github.com/bnema/campaign-checkin-cli/internal/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ckin",
		Short:         "Campaign check-in CLI (ckin): daily check-ins and task claims for wallet accounts",
		Long:          "ckin signs in with each configured wallet, performs the campaign's daily check-in when it is due, tries to claim every open task, and repeats once per cycle.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	v := config.New()
	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(v),
		newStatusCmd(v),
	)

	return rootCmd
}
