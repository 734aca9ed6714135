package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"TrendScope/internal/analysis"
	"TrendScope/internal/notifier"
	"TrendScope/internal/recorder"
	"TrendScope/internal/scheduler"
)

// newRootCmd creates the root command. Subcommands share one app built
// from the --config file before they run.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "trendscope",
		Short: "TrendScope - trend quality scoring for equities",
		Long: `TrendScope fits a quadratic curve to log prices, compares the asset with a
benchmark and rates the trend on a 0-100 scale.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			built, err := newApp(cfgPath)
			if err != nil {
				return err
			}
			*a = *built
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "configs/config.yaml", "Configuration file path")

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newRollingCmd(a))
	rootCmd.AddCommand(newCrossoversCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	return rootCmd
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Start date YYYY-MM-DD (history_days before --to if empty)")
	cmd.Flags().String("to", "", "End date YYYY-MM-DD (today if empty)")
	cmd.Flags().Bool("json", false, "Print JSON instead of a report")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Score one symbol against the benchmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			futureDays, _ := cmd.Flags().GetInt("future-days")
			noJitter, _ := cmd.Flags().GetBool("no-jitter")
			asJSON, _ := cmd.Flags().GetBool("json")

			series, err := a.loadSeries(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			res := a.analyzer(noJitter, futureDays).Analyze(cmd.Context(), series)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAnalysis(&res))
			return nil
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().Int("future-days", -1, "Forecast horizon in points (config value if negative)")
	cmd.Flags().Bool("no-jitter", false, "Disable the final score jitter")
	return cmd
}

func newRollingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rolling SYMBOL",
		Short: "Per-date positional metrics and R² over trailing windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			lookback, _ := cmd.Flags().GetInt("lookback")
			crossover, _ := cmd.Flags().GetInt("crossover")
			tail, _ := cmd.Flags().GetInt("tail")
			asJSON, _ := cmd.Flags().GetBool("json")

			series, err := a.loadSeries(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			rows, err := analysis.Rolling(cmd.Context(), series, a.rollingOptions(lookback, crossover))
			if err != nil {
				return fmt.Errorf("rolling analysis %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if tail > 0 && len(rows) > tail {
				rows = rows[len(rows)-tail:]
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRolling(series.Symbol, rows))
			return nil
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().Int("lookback", 0, "R² window in days (config value if 0)")
	cmd.Flags().Int("crossover", 0, "High/low window in days (config value if 0)")
	cmd.Flags().Int("tail", 20, "Rows to print in the report (all if 0)")
	return cmd
}

func newCrossoversCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crossovers SYMBOL",
		Short: "Fast/slow moving average crossovers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			fast, _ := cmd.Flags().GetInt("fast")
			slow, _ := cmd.Flags().GetInt("slow")
			asJSON, _ := cmd.Flags().GetBool("json")

			series, err := a.loadSeries(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			events, err := analysis.SMACrossovers(series, fast, slow)
			if err != nil {
				return fmt.Errorf("crossovers %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCrossovers(series.Symbol, events))
			return nil
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().Int("fast", analysis.DefaultFastPeriod, "Fast SMA period")
	cmd.Flags().Int("slow", analysis.DefaultSlowPeriod, "Slow SMA period")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled watchlist analysis and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), a)
		},
	}
}

func runService(parent context.Context, a *app) error {
	cfg, log := a.cfg, a.logger
	if err := cfg.ValidateTelegram(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy,
		notifier.WithLogger(log))

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if path := cfg.Database.SQLitePath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			log.Warn().Err(err).Msg("create database directory")
		}
		sr, err := recorder.NewSQLiteRecorder(path, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	sched := scheduler.NewScheduler(ctx, a.collector, a.analyzer(false, -1), tn, rec, scheduler.Options{
		Watchlist:   cfg.Watchlist,
		HistoryDays: cfg.Analysis.HistoryDays,
		Workers:     cfg.Analysis.Workers,
	}, log)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, analyzing watchlist now")
		go sched.RunNow()
	}

	log.Info().Strs("watchlist", cfg.Watchlist).Str("cron", cfg.Schedule.AnalysisCron).
		Msg("TrendScope is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
