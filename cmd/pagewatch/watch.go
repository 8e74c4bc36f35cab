package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/config"
	"github.com/entrhq/pagewatch/pkg/logging"
	"github.com/entrhq/pagewatch/pkg/telemetry"
	"github.com/entrhq/pagewatch/pkg/tools/browser"
	"github.com/entrhq/pagewatch/pkg/watch"
)

// watchFlags override values from the job file when set.
var watchFlags struct {
	url         string
	interval    time.Duration
	iterations  int
	outputDir   string
	headed      bool
	reload      bool
	verbosity   string
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch [job.yaml]",
	Short: "Watch a page and capture major UI changes",
	Long: `Open the page in a browser and classify it on an interval. Major and minor
changes are printed as they happen and the recommended screenshots and DOM
snapshots are written to the output directory together with a JSON summary.

The job is read from a YAML file, or built from flags when no file is given.
Flags override values from the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := loadJob(cmd, args)
		if err != nil {
			return err
		}
		return runWatch(job)
	},
}

func loadJob(cmd *cobra.Command, args []string) (*watch.JobConfig, error) {
	job := watch.DefaultJobConfig()
	if len(args) == 1 {
		loaded, err := watch.LoadJobConfig(args[0])
		if err != nil {
			return nil, err
		}
		job = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		job.URL = watchFlags.url
	}
	if flags.Changed("interval") {
		job.Interval = watchFlags.interval
	}
	if flags.Changed("iterations") {
		job.Iterations = watchFlags.iterations
	}
	if flags.Changed("output-dir") {
		job.OutputDir = watchFlags.outputDir
	}
	if flags.Changed("headed") {
		job.Headless = !watchFlags.headed
	}
	if flags.Changed("reload") {
		job.Reload = watchFlags.reload
	}
	if flags.Changed("verbosity") {
		job.Logging.Verbosity = watchFlags.verbosity
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

func runWatch(job *watch.JobConfig) error {
	logger, err := logging.NewLogger("watch")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	console := watch.NewConsole(watch.ParseVerbosity(job.Logging.Verbosity))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchFlags.metricsAddr != "" {
		srv := serveMetrics(watchFlags.metricsAddr, logger)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	manager := browser.NewSessionManager(logger)
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	if err := manager.Initialize(); err != nil {
		return err
	}

	thresholds := jobThresholds(job)
	session, err := manager.StartSession("watch", browser.SessionOptions{
		Headless:   job.Headless,
		Viewport:   &job.Viewport,
		Thresholds: &thresholds,
	})
	if err != nil {
		return err
	}

	if err := session.Navigate(job.URL, browser.NavigateOptions{WaitUntil: job.WaitUntil}); err != nil {
		return err
	}

	summary, err := watch.NewRunner(job, session, console, logger).Run(ctx)
	console.Summary(summary)
	if err != nil {
		console.Errorf("%v", err)
		return err
	}
	return nil
}

// jobThresholds layers the job's overrides on the configured thresholds.
func jobThresholds(job *watch.JobConfig) changedetect.Thresholds {
	base := changedetect.DefaultThresholds()
	if section := config.GetChangeDetection(); section != nil {
		base = section.Thresholds()
	}
	return base.Apply(job.Thresholds)
}

func serveMetrics(addr string, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics listener: %v", err)
		}
	}()
	logger.Infof("metrics available at http://%s/metrics", addr)
	return srv
}

func addWatchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&watchFlags.url, "url", "", "page to watch")
	flags.DurationVar(&watchFlags.interval, "interval", 30*time.Second, "time between observations")
	flags.IntVar(&watchFlags.iterations, "iterations", 0, "number of observations, 0 runs until interrupted")
	flags.StringVar(&watchFlags.outputDir, "output-dir", browser.DefaultOutputDir, "directory for captures and the summary")
	flags.BoolVar(&watchFlags.headed, "headed", false, "show the browser window")
	flags.BoolVar(&watchFlags.reload, "reload", false, "reload the page before every observation")
	flags.StringVar(&watchFlags.verbosity, "verbosity", "normal", "console output: quiet, normal, verbose, debug")
	flags.StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

func init() {
	addWatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
