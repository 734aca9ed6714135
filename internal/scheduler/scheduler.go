package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"TrendScope/internal/analysis"
	"TrendScope/internal/model"
	"TrendScope/internal/notifier"
	"TrendScope/internal/recorder"
)

// SeriesSource loads a symbol's price history.
type SeriesSource interface {
	FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
}

// Notifier delivers formatted reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options controls what a scheduled run analyzes.
type Options struct {
	Watchlist   []string
	HistoryDays int
	Workers     int
	FastPeriod  int
	SlowPeriod  int
}

// Scheduler manages the cron task and chat commands.
type Scheduler struct {
	cron     *cron.Cron
	source   SeriesSource
	analyzer *analysis.Analyzer
	notifier Notifier
	recorder recorder.Recorder
	opts     Options
	logger   arbor.ILogger
	ctx      context.Context
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, source SeriesSource, an *analysis.Analyzer, n Notifier,
	rec recorder.Recorder, opts Options, logger arbor.ILogger) *Scheduler {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 730
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.FastPeriod <= 0 {
		opts.FastPeriod = analysis.DefaultFastPeriod
	}
	if opts.SlowPeriod <= 0 {
		opts.SlowPeriod = analysis.DefaultSlowPeriod
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		source:   source,
		analyzer: an,
		notifier: n,
		recorder: rec,
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		now:      time.Now,
	}
}

// Register schedules the watchlist analysis.
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.cron.AddFunc(analysisCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("entries", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the watchlist task immediately.
func (s *Scheduler) RunNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	s.logger.Info().Strs("watchlist", s.opts.Watchlist).Msg("running watchlist analysis")
	results, crossings := s.RunWatchlist(s.ctx)

	report := notifier.FormatRunSummary(results, s.now())
	for _, symbol := range s.opts.Watchlist {
		if events := crossings[symbol]; len(events) > 0 {
			report += "\n" + notifier.FormatCrossovers(symbol, events)
		}
	}
	s.trySend(report)
}

// RunWatchlist analyzes every watchlist symbol under one run ID and records
// the outcomes. Results keep watchlist order. The map holds crossovers that
// occurred on each symbol's latest bar.
func (s *Scheduler) RunWatchlist(ctx context.Context) ([]model.AnalysisResult, map[string][]model.CrossoverEvent) {
	runID := uuid.NewString()
	results := make([]model.AnalysisResult, len(s.opts.Watchlist))
	latest := make([][]model.CrossoverEvent, len(s.opts.Watchlist))

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Workers)
	for i, symbol := range s.opts.Watchlist {
		g.Go(func() error {
			res, series := s.analyzeSymbol(ctx, symbol)
			results[i] = res
			latest[i] = s.newCrossovers(series)
			s.record(runID, &res, latest[i])
			return nil
		})
	}
	_ = g.Wait()

	crossings := make(map[string][]model.CrossoverEvent)
	for i, symbol := range s.opts.Watchlist {
		if len(latest[i]) > 0 {
			crossings[symbol] = latest[i]
		}
	}
	s.logger.Info().Str("run_id", runID).Int("symbols", len(results)).Msg("watchlist analysis complete")
	return results, crossings
}

// analyzeSymbol fetches and analyzes one symbol. A fetch failure yields the
// empty-input result so every symbol gets a row.
func (s *Scheduler) analyzeSymbol(ctx context.Context, symbol string) (model.AnalysisResult, *model.PriceSeries) {
	end := s.now()
	start := end.AddDate(0, 0, -s.opts.HistoryDays)
	series, err := s.source.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("fetch series")
		series = model.NewPriceSeries(symbol, nil)
	}
	return s.analyzer.Analyze(ctx, series), series
}

func (s *Scheduler) newCrossovers(series *model.PriceSeries) []model.CrossoverEvent {
	if series.Len() < s.opts.SlowPeriod {
		return nil
	}
	events, err := analysis.SMACrossovers(series, s.opts.FastPeriod, s.opts.SlowPeriod)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", series.Symbol).Msg("crossover scan")
		return nil
	}
	return analysis.LatestCrossovers(series, events)
}

func (s *Scheduler) record(runID string, res *model.AnalysisResult, events []model.CrossoverEvent) {
	if err := s.recorder.RecordAnalysis(runID, res); err != nil {
		s.logger.Error().Err(err).Str("symbol", res.Symbol).Msg("record analysis")
	}
	if err := s.recorder.RecordCrossovers(runID, res.Symbol, events); err != nil {
		s.logger.Error().Err(err).Str("symbol", res.Symbol).Msg("record crossovers")
	}
}

const helpText = "Available commands:\n" +
	"• /score SYMBOL - analyze one symbol\n" +
	"• /watchlist - analyze the watchlist\n" +
	"• /history SYMBOL - recent recorded scores"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends the bot name in groups: /score@trendscope_bot.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/score":
		if len(fields) < 2 {
			return "Usage: /score SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		res, _ := s.analyzeSymbol(ctx, symbol)
		s.record(uuid.NewString(), &res, nil)
		return notifier.FormatScoreReport(&res)
	case "/watchlist":
		results, _ := s.RunWatchlist(ctx)
		return notifier.FormatRunSummary(results, s.now())
	case "/history":
		if len(fields) < 2 {
			return "Usage: /history SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		records, err := s.recorder.RecentScores(symbol, 10)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("load history")
			return fmt.Sprintf("❌ history unavailable for %s", symbol)
		}
		return notifier.FormatHistory(symbol, records)
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendWithRetry(s.ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
