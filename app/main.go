package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"storemonitor/app/internal/config"
	"storemonitor/app/internal/database"
	"storemonitor/app/internal/jobs"
	"storemonitor/app/internal/log"
	"storemonitor/app/internal/metrics"
	"storemonitor/app/internal/report"
	"storemonitor/app/internal/sink"
)

const usage = `usage: storemonitor <command> [args]

commands:
  run               generate a report now and print where it was written
  status <id>       print a report job as JSON
  logs [-n N] [id]  print recent report events, optionally for one job
  schedule          generate a report every REPORT_INTERVAL_SECONDS until interrupted
  schema            create the database tables
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = dispatch(ctx, cfg, flag.Arg(0), flag.Args()[1:])
	stop()
	if err != nil {
		log.Errorw("Command failed", "command", flag.Arg(0), "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func dispatch(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	db, err := database.Open(cfg.DBPath, cfg.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	a := newApp(cfg, db)
	defer a.close()

	switch cmd {
	case "schema":
		log.Infow("Schema ready", "db", cfg.DBPath)
		return nil
	case "run":
		return a.runOnce(ctx)
	case "status":
		if len(args) != 1 {
			return errors.New("status needs exactly one report id")
		}
		return a.status(ctx, args[0])
	case "logs":
		return a.logs(ctx, args)
	case "schedule":
		return a.schedule(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// app wires the database into the report builder and job runner
type app struct {
	cfg     *config.Config
	db      *database.DB
	builder *report.Builder
	runner  *jobs.Runner
}

func newApp(cfg *config.Config, db *database.DB) *app {
	m := metrics.New()
	b := report.NewBuilder(
		report.Sources{Stores: db, Observations: db, Hours: db, Timezones: db},
		sink.NewCSVSink(cfg.ReportsDir),
		report.Config{
			BatchSize:    cfg.BatchSize,
			Workers:      cfg.Workers,
			StoreTimeout: cfg.StoreTimeout,
			Metrics:      m,
		},
	)
	r := jobs.NewRunner(db, b, db, m)
	r.ExportMetricsTo(cfg.MetricsTextfile)
	return &app{
		cfg:     cfg,
		db:      db,
		builder: b,
		runner:  r,
	}
}

func (a *app) close() {
	a.builder.Close()
}

func (a *app) runOnce(ctx context.Context) error {
	id, err := a.runner.Create(ctx)
	if err != nil {
		return err
	}
	result, err := a.runner.Run(ctx, id)
	if err != nil {
		return fmt.Errorf("report %s: %w", id, err)
	}

	fmt.Printf("report %s complete: %d/%d stores, %s\n",
		id, result.StoresProcessed, result.StoresTotal, result.Filepath)
	return nil
}

func (a *app) status(ctx context.Context, id string) error {
	rep, err := a.runner.Status(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func (a *app) logs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	n := fs.Int("n", 50, "number of events")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.db.GetLogs(ctx, *n, "", database.LogCategoryReport, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read logs: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLEVEL\tREPORT\tMESSAGE\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp, e.Level, e.Report, e.Message, e.Details)
	}
	return tw.Flush()
}

// schedule triggers a report immediately and then on every tick. Shutdown
// waits for triggered reports so none is left Running.
func (a *app) schedule(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.ReportInterval)
	defer ticker.Stop()
	log.Infof("Scheduler started with %v interval", a.cfg.ReportInterval)

	tick := func() {
		id, err := a.runner.Trigger(ctx)
		if err != nil {
			log.Warnw("Failed to trigger report", "error", err)
			return
		}
		log.Infow("Report triggered", "report_id", id)

		if err := a.db.PruneLogs(ctx, a.cfg.LogKeep); err != nil {
			log.Warnw("Failed to prune logs", "error", err)
		}
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down, waiting for running reports")
			a.runner.Wait()
			return nil
		case <-ticker.C:
			tick()
		}
	}
}
