package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/filter"
	"github.com/mkaelin/limmat-events/internal/store"
)

var (
	flagListUpcoming bool
	flagListDays     int
	flagListCategory string
	flagListCity     string
	flagListRadius   float64
	flagListSort     string
	flagListFormat   string
	flagListVerbose  bool
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events from the local store",
		RunE:  runList,
	}

	cmd.Flags().BoolVar(&flagListUpcoming, "upcoming", false, "Only events that have not yet ended")
	cmd.Flags().IntVar(&flagListDays, "within-days", 0, "Only events starting within the next N days")
	cmd.Flags().StringVar(&flagListCategory, "category", "", "Only events in these categories (comma-separated)")
	cmd.Flags().StringVar(&flagListCity, "city", "", "Only events in these cities (comma-separated)")
	cmd.Flags().Float64Var(&flagListRadius, "radius", 0, "Only events within this many km of the reference point")
	cmd.Flags().StringVar(&flagListSort, "sort", "date", "Sort order: date, city or title")
	cmd.Flags().StringVar(&flagListFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().BoolVar(&flagListVerbose, "verbose", false, "Show organizer, price and link details")

	return cmd
}

// runList is the main listing logic
func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Validate format and sort order
	format := OutputFormat(strings.ToLower(flagListFormat))
	if format != FormatText && format != FormatJSON && format != FormatICS {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", flagListFormat)
	}
	sortOrder := SortOrder(strings.ToLower(flagListSort))
	if sortOrder != SortByDate && sortOrder != SortByCity && sortOrder != SortByTitle {
		return fmt.Errorf("invalid sort order: %s (must be 'date', 'city' or 'title')", flagListSort)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	events := buildListFilter(cfg.ReferenceLat, cfg.ReferenceLon).Apply(st.List())
	sortEvents(events, sortOrder)

	return WriteEvents(cmd.OutOrStdout(), events, format, flagListVerbose)
}

// buildListFilter assembles the store filter from the list flags.
func buildListFilter(refLat, refLon float64) *filter.Filter {
	f := &filter.Filter{UpcomingOnly: flagListUpcoming}
	if flagListDays > 0 {
		to := time.Now().AddDate(0, 0, flagListDays)
		f.To = &to
		f.UpcomingOnly = true
	}
	if flagListCategory != "" {
		f.Categories = splitList(flagListCategory)
	}
	if flagListCity != "" {
		f.Cities = splitList(flagListCity)
	}
	if flagListRadius > 0 {
		f.MaxDistanceKm = flagListRadius
		f.Origin = &event.Coordinates{Lat: refLat, Lon: refLon}
	}
	return f
}

// splitList splits a comma-separated flag value into trimmed parts.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
