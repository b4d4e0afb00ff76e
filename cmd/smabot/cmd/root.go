package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smabot",
	Short: "A moving average crossover trading bot",
	Long: `smabot trades one currency pair with a moving average crossover.

It goes long when the close crosses above the average of the last bars,
closes positions on stop-gain and stop-loss rules, and reports:
  - on every position opened or closed
  - once a day on a cron schedule

Reports go to the log and, when configured, to email, a Discord webhook
and websocket dashboards. Closed positions are journaled to CSV or SQLite.`,
	SilenceUsage: true,
}

var envFiles []string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "env files with secrets (SMTP_PASSWORD, WEBHOOK_URL)")
}
