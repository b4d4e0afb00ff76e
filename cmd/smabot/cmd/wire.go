package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/smatrader/broker/paper"
	"github.com/rustyeddy/smatrader/config"
	"github.com/rustyeddy/smatrader/controller"
	"github.com/rustyeddy/smatrader/gains"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/notify"
	"github.com/rustyeddy/smatrader/position"
	"github.com/rustyeddy/smatrader/report"
	"github.com/rustyeddy/smatrader/strategies"
	"go.uber.org/zap"
)

const reportDrainTimeout = 10 * time.Second

// bot is everything a run needs, wired from a Config.
type bot struct {
	cfg *config.Config
	log *zap.Logger

	broker   *paper.Broker
	manager  *position.Manager
	gains    *gains.Aggregator
	strategy strategies.Strategy
	ctrl     *controller.Controller
	journal  journal.Journal
	hub      *notify.Hub
	reports  *notify.Async
}

func newBot(cfg *config.Config, log *zap.Logger) (*bot, error) {
	strat, err := strategies.ByName(cfg.StrategyConfig())
	if err != nil {
		return nil, err
	}

	opts := []paper.Option{paper.WithFeeRate(cfg.Account.FeeRate), paper.WithLogger(log.Named("paper"))}
	if cfg.Account.Async {
		opts = append(opts, paper.WithAsync())
	}
	b := &bot{
		cfg:      cfg,
		log:      log,
		broker:   paper.New(cfg.Balances(), opts...),
		gains:    gains.NewAggregator(log.Named("gains")),
		strategy: strat,
	}
	b.manager = position.NewManager(b.broker, b.broker, position.WithLogger(log.Named("positions")))
	b.broker.SetConfirmer(b.manager)

	if cfg.Notify.Websocket.Addr != "" {
		b.hub = notify.NewHub(log.Named("hub"))
	}
	sender, reports, err := buildSender(cfg, log, b.hub)
	if err != nil {
		return nil, err
	}
	b.reports = reports

	b.ctrl = controller.New(strat, b.manager, b.gains, b.broker, sender, controller.Options{
		Amount: cfg.Strategy.Amount,
		Rules:  cfg.Rules(),
		Prices: b.broker,
		Logger: log.Named("controller"),
	})

	if b.journal, err = openJournal(cfg.Journal); err != nil {
		return nil, err
	}
	if b.journal != nil {
		b.manager.AddListener(journal.Recorder{J: b.journal, Log: log.Named("journal")})
	}
	return b, nil
}

// buildSender always logs reports. The external transports are throttled,
// silenced under the test profile and run behind a queue, which is returned
// so it can be drained on shutdown.
func buildSender(cfg *config.Config, log *zap.Logger, hub *notify.Hub) (notify.Sender, *notify.Async, error) {
	var external notify.Multi
	if m := cfg.Notify.Mail; m.Enabled {
		external = append(external, notify.NewMail(notify.MailConfig{
			Host:     m.Host,
			Port:     m.Port,
			Username: m.Username,
			Password: m.Password,
			From:     m.From,
			To:       m.To,
		}))
	}
	if wh := notify.NewWebhook(cfg.Notify.Webhook.URL); wh.Enabled() {
		external = append(external, wh)
	}
	if hub != nil {
		external = append(external, hub)
	}

	reportLog := log.Named("report")
	senders := notify.Multi{notify.Log{L: reportLog}}
	if len(external) == 0 {
		return senders, nil, nil
	}

	interval, err := cfg.ThrottleInterval()
	if err != nil {
		return nil, nil, err
	}
	var out notify.Sender = external
	if interval > 0 {
		out = notify.NewThrottled(out, interval, cfg.Notify.Throttle.Burst)
	}
	q := notify.NewAsync(notify.Suppressed(cfg.Profile, out, reportLog), cfg.Notify.QueueSize, reportLog)
	return append(senders, q), q, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(jc.File)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

// Close drains pending reports for up to reportDrainTimeout, then releases
// the journal and the hub.
func (b *bot) Close() error {
	var errs []error
	if b.reports != nil {
		ctx, cancel := context.WithTimeout(context.Background(), reportDrainTimeout)
		if err := b.reports.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain reports: %w", err))
		}
		cancel()
	}
	if b.journal != nil {
		errs = append(errs, b.journal.Close())
	}
	if b.hub != nil {
		b.hub.Close()
	}
	return errors.Join(errs...)
}

// summary fills a run summary from the current state.
func (b *bot) summary(ctx context.Context, s *journal.RunSummary) {
	s.Strategy = b.strategy.Name()
	s.Pair = b.strategy.RequestedPair().String()
	s.Rules = b.cfg.Rules().String()

	var closed []journal.PositionRecord
	for _, p := range b.manager.Positions() {
		if rec, ok := journal.FromPosition(p); ok {
			closed = append(closed, rec)
		} else if p.Status.Active() {
			s.Open++
		}
	}
	s.Tally(closed)

	for _, g := range b.gains.Snapshot() {
		s.Gains = append(s.Gains, report.GainLine(g))
	}

	balances, err := b.ctrl.Balances(ctx)
	if err != nil {
		b.log.Warn("balances unavailable", zap.Error(err))
		return
	}
	currencies := make([]string, 0, len(balances))
	for c := range balances {
		currencies = append(currencies, string(c))
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		s.Balances = append(s.Balances, fmt.Sprintf("%s %s", c, balances.Get(market.Currency(c)).StringFixedBank(2)))
	}
}
