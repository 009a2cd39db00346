package cli

import (
	"github.com/spf13/cobra"
)

var appVersion string // set in Execute, reported by the index route

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hco",
		Short: "HCO site backend",
		Long: `HCO site backend: the administrator session API.

Configuration is read from the environment, after an optional .env file in
the working directory. JWT_SECRET and JWT_REFRESH_SECRET are required.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}
