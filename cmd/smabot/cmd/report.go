package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/smatrader/config"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect the daily report schedule",
}

var reportScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the next daily report times",
	Long: `Print the next fire times of the daily report cron.

Example:
  smabot report schedule -f smabot.yaml -n 3`,
	RunE: runReportSchedule,
}

var (
	reportConfigPath string
	reportCount      int
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportScheduleCmd)

	reportScheduleCmd.Flags().StringVarP(&reportConfigPath, "file", "f", "", "path to config file (default config when empty)")
	reportScheduleCmd.Flags().IntVarP(&reportCount, "count", "n", 5, "number of fire times to print")
}

func runReportSchedule(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if reportConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(reportConfigPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	s, err := cfg.Schedule()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Daily report: %s (%s)\n", s.Spec, s.Location)
	t := time.Now()
	for i := 0; i < reportCount; i++ {
		t = s.Next(t)
		fmt.Fprintf(out, "  %s\n", t.Format("2006-01-02 Mon 15:04:05 MST"))
	}
	return nil
}
