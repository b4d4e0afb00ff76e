package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/smatrader/config"
	"github.com/rustyeddy/smatrader/feed"
	"github.com/rustyeddy/smatrader/id"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/logging"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/report"
	"github.com/rustyeddy/smatrader/signal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot over a bar feed",
	Long: `Run the bot with settings from a configuration file.

Bars are read as CSV rows (time,open,high,low,close[,volume]) from a file or
from stdin ("-"). The daily report is scheduled for as long as the bot runs;
use --wait to keep running after the feed ends until interrupted.

Example:
  smabot run -f smabot.yaml -b bars.csv --org run.org`,
	RunE: runRun,
}

var (
	runConfigPath string
	runBarsPath   string
	runFrom       string
	runTo         string
	runOrgPath    string
	runWait       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runBarsPath, "bars", "b", "-", "bars CSV file, - for stdin")
	runCmd.Flags().StringVar(&runFrom, "from", "", "skip bars before this time (RFC3339 or YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runTo, "to", "", "skip bars at or after this time (RFC3339 or YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runOrgPath, "org", "", "write an Org-mode run summary to this file")
	runCmd.Flags().BoolVar(&runWait, "wait", false, "keep running after the feed ends until interrupted")
	runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFiles...); err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	from, err := parseBound(runFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseBound(runTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := newBot(cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if b.hub != nil {
		srv := serveHub(b, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	sched, err := cfg.Schedule()
	if err != nil {
		return err
	}
	scheduler := report.NewScheduler(sched, b.ctrl.RunDailyReport, log.Named("cron"))
	scheduler.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		scheduler.Stop(sctx)
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running %s on %s (%s)\n", b.strategy.Name(), b.strategy.RequestedPair(), cfg.Rules())

	src, closeSrc, err := openBars(cmd.InOrStdin(), runBarsPath, from, to)
	if err != nil {
		return err
	}
	defer closeSrc()

	summary := &journal.RunSummary{
		RunID:   id.New(),
		Created: time.Now(),
		Dataset: runBarsPath,
	}
	if err := b.run(ctx, src, summary); err != nil && ctx.Err() == nil {
		return err
	}
	b.broker.Wait()

	if runWait && ctx.Err() == nil {
		log.Info("feed ended, waiting for interrupt")
		<-ctx.Done()
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, b.ctrl.Report())

	if runOrgPath != "" {
		b.summary(context.Background(), summary)
		if err := summary.WriteOrg(runOrgPath); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(out, "Summary written to %s\n", runOrgPath)
	}
	return nil
}

// run feeds every bar to the controller and counts signals.
func (b *bot) run(ctx context.Context, src feed.Feed, s *journal.RunSummary) error {
	var enters, exits int
	n, err := feed.Each(ctx, src, func(bar market.Bar) error {
		if s.Start.IsZero() {
			s.Start = bar.Time
		}
		s.End = bar.Time
		switch b.ctrl.OnBar(ctx, bar) {
		case signal.EnterLong:
			enters++
		case signal.ExitLong:
			exits++
		}
		return nil
	})
	s.Bars = n
	b.log.Info("feed done",
		zap.Int("bars", n),
		zap.Int("enter_signals", enters),
		zap.Int("exit_signals", exits))
	return err
}

func serveHub(b *bot, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(b.cfg.Notify.Websocket.Path, b.hub)
	srv := &http.Server{
		Addr:              b.cfg.Notify.Websocket.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("report websocket listening", zap.String("addr", srv.Addr), zap.String("path", b.cfg.Notify.Websocket.Path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("report websocket stopped", zap.Error(err))
		}
	}()
	return srv
}

func openBars(stdin io.Reader, path string, from, to time.Time) (feed.Feed, func() error, error) {
	if path == "" || path == "-" {
		return feed.NewCSVBars(stdin, from, to), func() error { return nil }, nil
	}
	f, err := feed.OpenCSVBars(path, from, to)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
