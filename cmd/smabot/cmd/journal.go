package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rustyeddy/smatrader/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the position journal",
	Long: `Query and display closed positions from the SQLite journal.

Subcommands:
  position - Get details of a specific position by id
  today    - List positions closed today
  day      - List positions closed on a specific day

Examples:
  smabot journal position 3
  smabot journal today
  smabot journal day 2024-01-15`,
}

var journalPositionCmd = &cobra.Command{
	Use:   "position <id>",
	Short: "Get details of a specific position",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalPosition,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List positions closed today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJournalDay(cmd, time.Now())
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List positions closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := journalLocation()
		if err != nil {
			return err
		}
		day, err := time.ParseInLocation("2006-01-02", args[0], loc)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		return listJournalDay(cmd, day)
	},
}

var (
	journalDBPath   string
	journalTimezone string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalPositionCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./smabot.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().StringVar(&journalTimezone, "tz", "Local", "timezone of the day boundaries")
}

func runJournalPosition(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("position id %q: %w", args[0], err)
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetPosition(id)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionOrg(rec))
	return nil
}

func listJournalDay(cmd *cobra.Command, day time.Time) error {
	loc, err := journalLocation()
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end := journal.DayRange(day, loc)
	recs, err := j.ListClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionsOrg(recs))
	return nil
}

func journalLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(journalTimezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", journalTimezone, err)
	}
	return loc, nil
}
