package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mkaelin/limmat-events/internal/config"
	"github.com/mkaelin/limmat-events/internal/fetch"
	"github.com/mkaelin/limmat-events/internal/geocode"
	"github.com/mkaelin/limmat-events/internal/metrics"
	"github.com/mkaelin/limmat-events/internal/notifier"
	"github.com/mkaelin/limmat-events/internal/pipeline"
	"github.com/mkaelin/limmat-events/internal/store"
)

var (
	flagRunSources  string
	flagRunOnly     string
	flagRunAnnounce bool
	flagRunDryRun   bool
	flagRunMetrics  string
	flagRunFormat   string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect events from the configured sources",
		Long: `Fetches every source in the catalog, extracts and normalizes its
events and upserts them into the local store. Sources are processed
sequentially; a failing source never aborts the run.`,
		RunE: runCollect,
	}

	cmd.Flags().StringVar(&flagRunSources, "sources", "", "Path to the source catalog (overrides config)")
	cmd.Flags().StringVar(&flagRunOnly, "source", "", "Collect only the source with this name")
	cmd.Flags().BoolVar(&flagRunAnnounce, "announce", false, "Post announcements for newly created events")
	cmd.Flags().BoolVar(&flagRunDryRun, "dry-run", false, "Print announcements instead of posting them")
	cmd.Flags().StringVar(&flagRunMetrics, "metrics-addr", "", "Serve Prometheus metrics on this address during the run (overrides config)")
	cmd.Flags().StringVar(&flagRunFormat, "format", "text", "Report format: text or json")

	return cmd
}

// runCollect is the main collection logic
func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Validate format
	format := OutputFormat(strings.ToLower(flagRunFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagRunFormat)
	}

	// Load the source catalog
	sourcesPath := cfg.SourcesFile
	if flagRunSources != "" {
		sourcesPath = flagRunSources
	}
	sources, err := config.LoadSources(sourcesPath)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	if flagRunOnly != "" {
		sources, err = selectSource(sources, flagRunOnly)
		if err != nil {
			return err
		}
	}

	// Expose metrics while the run is in flight
	metricsAddr := cfg.MetricsAddr
	if flagRunMetrics != "" {
		metricsAddr = flagRunMetrics
	}
	if metricsAddr != "" {
		serveMetrics(metricsAddr)
	}

	// Initialize the store
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	geo := geocode.NewClient(geocode.Options{
		BaseURL:     cfg.GeocoderURL,
		UserAgent:   cfg.UserAgent,
		MinInterval: cfg.GeocodeInterval,
		CountryBias: countryName(cfg.CountryCode),
	})
	runner := pipeline.New(fetch.New(cfg.UserAgent, cfg.FetchTimeout, cfg.FetchAttempts), geo, st, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := runner.Run(ctx, sources)

	// Persist whatever the run produced, even after a cancel
	if err := st.Save(); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}

	if err := WriteReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if len(report.NewEvents) > 0 && (flagRunAnnounce || flagRunDryRun) {
		if err := announce(report); err != nil {
			return err
		}
	}

	// Set exit code based on whether new events were found
	if report.TotalCreated() > 0 {
		os.Exit(ExitNewEvents)
	}

	return nil
}

// selectSource narrows the catalog down to the named source.
func selectSource(sources []config.Source, name string) ([]config.Source, error) {
	for _, src := range sources {
		if src.Name == name {
			return []config.Source{src}, nil
		}
	}
	return nil, fmt.Errorf("source %q not found in catalog", name)
}

// announce posts one status per newly created event on every
// configured channel.
func announce(report *pipeline.Report) error {
	notifiers, err := buildNotifiers()
	if err != nil {
		return err
	}
	for _, n := range notifiers {
		if err := n.Notify(report.NewEvents); err != nil {
			return fmt.Errorf("announcing events: %w", err)
		}
	}
	return nil
}

// buildNotifiers assembles the announcement channels from the process
// environment. Credentials decide which channels are active.
func buildNotifiers() ([]notifier.Notifier, error) {
	if flagRunDryRun {
		return []notifier.Notifier{notifier.NewDryRunNotifier()}, nil
	}

	var out []notifier.Notifier
	if tw, err := notifier.NewTwitterNotifier(); err == nil {
		out = append(out, tw)
	}
	if tg, err := notifier.NewTelegramNotifier(); err == nil {
		out = append(out, tg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no announcement channel configured: set the TWITTER_* or TELEGRAM_* environment variables")
	}
	return out, nil
}

// serveMetrics exposes the Prometheus registry in the background for
// the lifetime of the process.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}

// countryName maps an ISO country code to the qualifier appended to
// geocoding queries. Nominatim resolves Swiss addresses far more
// reliably with the local-language country name attached.
func countryName(code string) string {
	switch strings.ToUpper(code) {
	case "CH":
		return "Schweiz"
	case "DE":
		return "Deutschland"
	case "AT":
		return "Österreich"
	case "FR":
		return "France"
	case "LI":
		return "Liechtenstein"
	default:
		return code
	}
}
