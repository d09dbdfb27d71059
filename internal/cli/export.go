package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mkaelin/limmat-events/internal/calendar"
	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/export"
	"github.com/mkaelin/limmat-events/internal/filter"
	"github.com/mkaelin/limmat-events/internal/store"
)

var (
	flagExportFormat   string
	flagExportOut      string
	flagExportUpcoming bool
	flagExportRadius   float64
	flagExportTitle    string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the event catalog as a calendar feed or PDF programme",
		RunE:  runExport,
	}

	cmd.Flags().StringVar(&flagExportFormat, "format", "ics", "Export format: ics or pdf")
	cmd.Flags().StringVar(&flagExportOut, "out", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&flagExportUpcoming, "upcoming", false, "Only export events that have not yet ended")
	cmd.Flags().Float64Var(&flagExportRadius, "radius", 0, "Only export events within this many km of the reference point")
	cmd.Flags().StringVar(&flagExportTitle, "title", "Veranstaltungen im Limmattal", "Document title for the PDF programme")

	return cmd
}

// runExport is the main export logic
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := strings.ToLower(flagExportFormat)
	if format != "ics" && format != "pdf" {
		return fmt.Errorf("invalid format: %s (must be 'ics' or 'pdf')", flagExportFormat)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	f := &filter.Filter{UpcomingOnly: flagExportUpcoming}
	if flagExportRadius > 0 {
		f.MaxDistanceKm = flagExportRadius
		f.Origin = &event.Coordinates{Lat: cfg.ReferenceLat, Lon: cfg.ReferenceLon}
	}
	events := f.Apply(st.List())

	var w io.Writer = cmd.OutOrStdout()
	if flagExportOut != "" {
		file, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "ics":
		if _, err := io.WriteString(w, calendar.Feed(events)); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
	case "pdf":
		if err := export.WritePDF(w, events, flagExportTitle); err != nil {
			return fmt.Errorf("writing pdf: %w", err)
		}
	}

	log.Info().Int("events", len(events)).Str("format", format).Msg("catalog exported")
	return nil
}
