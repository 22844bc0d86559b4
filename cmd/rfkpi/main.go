// rfkpi analyzes QXDM-style protocol log exports, derives RF and handover
// KPIs, and checks them against configured thresholds.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/setevik/rfkpi/internal/config"
	"github.com/setevik/rfkpi/internal/kpi"
	"github.com/setevik/rfkpi/internal/loader"
	"github.com/setevik/rfkpi/internal/report"
	"github.com/setevik/rfkpi/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "analyze":
			runAnalyze(os.Args[2:])
			return
		case "query":
			runQuery(os.Args[2:])
			return
		case "digest":
			runDigest(os.Args[2:])
			return
		case "status":
			runStatus(os.Args[2:])
			return
		case "version":
			fmt.Println("rfkpi", version)
			return
		}
	}

	// Default: analyze.
	runAnalyze(os.Args[1:])
}

// --- analyze subcommand ---

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	jsonOut := fs.Bool("json", false, "emit report as JSON")
	noStore := fs.Bool("no-store", false, "do not record this run in the database")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("rfkpi", version)
		os.Exit(0)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rfkpi analyze [flags] <logfile|->")
		os.Exit(2)
	}
	source := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	slog.Info("rfkpi starting",
		"version", version,
		"instance", cfg.Instance.ID,
		"source", source,
	)

	log, err := loader.LoadFile(source)
	if err != nil {
		slog.Error("failed to load log", "source", source, "error", err)
		os.Exit(1)
	}

	slog.Info("log loaded",
		"lines", len(log.Lines),
		"malformed", log.Malformed,
	)

	rep := kpi.Evaluate(log, cfg.Thresholds.KPI())

	if *jsonOut {
		if err := report.WriteJSON(os.Stdout, cfg.Instance.ID, source, rep); err != nil {
			slog.Error("failed to encode report", "error", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(report.Format(cfg.Instance.ID, source, rep))
	}

	if !*noStore {
		recordRun(cfg, source, rep)
	}

	if rep.Failed() {
		os.Exit(1)
	}
}

// recordRun stores the analysis result and applies retention. Storage
// problems are logged, never fatal: the verdict already went to stdout.
func recordRun(cfg *config.Config, source string, rep *kpi.Report) {
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		slog.Warn("failed to open run database", "error", err)
		return
	}
	defer db.Close()

	if cfg.Store.Retention.Duration > 0 {
		purged, err := db.Purge(cfg.Store.Retention.Duration)
		if err != nil {
			slog.Warn("failed to purge old runs", "error", err)
		} else if purged > 0 {
			slog.Info("purged old runs", "count", purged, "retention", cfg.Store.Retention.Duration)
		}
	}

	run := store.NewRun(cfg.Instance.ID, source, rep)
	if err := db.Insert(run); err != nil {
		slog.Warn("failed to record run", "error", err)
		return
	}
	slog.Info("run recorded", "id", run.ID, "passed", run.Passed)
}

// --- query subcommand ---

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "7d", "time window (e.g. 24h, 7d, 30d)")
	failed := fs.Bool("failed", false, "show only failed runs")
	instance := fs.String("instance", "", "filter by instance ID")
	limit := fs.Int("limit", 50, "max runs to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	since, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	runs, err := db.Query(store.QueryFilter{
		Since:      time.Now().Add(-since),
		InstanceID: *instance,
		OnlyFailed: *failed,
		Limit:      *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return
	}

	printRuns(runs)
}

func printRuns(runs []*store.Run) {
	for _, run := range runs {
		ts := run.Timestamp.Local().Format("2006-01-02 15:04:05")
		result := "PASS"
		if !run.Passed {
			result = "FAIL"
		}
		fmt.Printf("%s  [%s] %s\n", ts, result, run.Source)
		fmt.Printf("             %d lines, %d samples, %d handover attempts\n",
			run.LineCount, run.SampleCount, run.AttemptCount)
		for _, v := range run.Verdicts {
			if v.Failed() {
				fmt.Printf("             FAILED %s\n", v.Summary)
			}
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d run(s)\n", len(runs))
}

// --- digest subcommand ---

func runDigest(args []string) {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "7d", "time window for digest")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	duration, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value: %v\n", err)
		os.Exit(1)
	}

	until := time.Now()
	since := until.Add(-duration)

	runs, err := db.Query(store.QueryFilter{Since: since, Until: until})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	digest := report.BuildDigest(cfg.Instance.ID, runs, since, until)
	fmt.Print(report.FormatDigest(digest))
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error")

	fmt.Printf("Instance:    %s\n", cfg.Instance.ID)
	fmt.Printf("Role:        %s\n", cfg.Instance.Role)

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Last run.
	lastRuns, err := db.Query(store.QueryFilter{Limit: 1})
	if err == nil && len(lastRuns) > 0 {
		run := lastRuns[0]
		ago := time.Since(run.Timestamp).Truncate(time.Second)
		result := "PASS"
		if !run.Passed {
			result = "FAIL"
		}
		fmt.Printf("Last run:    [%s] %s — %s ago\n", result, run.Source, formatDuration(ago))
	} else {
		fmt.Println("Last run:    none")
	}

	// Pass/fail counts for last 7d.
	since7d := time.Now().Add(-7 * 24 * time.Hour)
	runs7d, _ := db.Query(store.QueryFilter{Since: since7d})

	var passed, failedRuns int
	for _, run := range runs7d {
		if run.Passed {
			passed++
		} else {
			failedRuns++
		}
	}
	fmt.Printf("Runs (7d):   %d passed, %d failed\n", passed, failedRuns)

	runCount, _ := db.Count()
	fmt.Printf("DB runs:     %d total\n", runCount)
	fmt.Printf("DB path:     %s\n", cfg.DBPath())
}

// --- utilities ---

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", h, m)
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, h)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
