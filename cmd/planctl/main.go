package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpserver "hk_itinerary/internal/adapters/http_server"
	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/bootstrap"
	"hk_itinerary/internal/domain"
	"hk_itinerary/internal/shared"
)

var (
	prefsFile string
	withDB    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planctl",
		Short: "Generate accessible Hong Kong itineraries from the command line",
		Long: `planctl runs the same planner as the API against a YAML preferences file.
	Logs go to stderr so the itinerary on stdout can be piped.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&prefsFile, "prefs", "p", "", "path to a YAML preferences file (required)")
	rootCmd.PersistentFlags().BoolVar(&withDB, "db", false, "also query the MySQL cached_database tier")
	_ = rootCmd.MarkPersistentFlagRequired("prefs")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(venuesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*bootstrap.Deps, domain.UserPreferences, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).Output(os.Stderr)

	f, err := os.Open(prefsFile)
	if err != nil {
		return nil, domain.UserPreferences{}, err
	}
	defer f.Close()
	p, err := loadPrefs(f)
	if err != nil {
		return nil, domain.UserPreferences{}, err
	}
	deps, err := bootstrap.Build(ctx, cfg, withDB)
	if err != nil {
		return nil, domain.UserPreferences{}, fmt.Errorf("wiring: %w", err)
	}
	return deps, p, nil
}

func planCmd() *cobra.Command {
	var format string
	var forecast string
	var days int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an itinerary and print it as JSON or CSV",
		Long: `Generates a multi-day itinerary.

	--forecast overrides the Observatory forecast with a comma separated list
	of tags (clear, rain, extreme_heat, extreme_cold), one per day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
			fc, err := parseForecast(forecast)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, p, err := setup(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()
			if days > 0 {
				p.Days = days
			}

			it, err := deps.Planner.Generate(ctx, p, fc)
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), it, format); err != nil {
				return err
			}
			if it.Status != domain.StatusComplete {
				log.Warn().Str("status", string(it.Status)).Ints("infeasible_days", it.InfeasibleDays).Msg("itinerary not complete")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or csv")
	cmd.Flags().StringVar(&forecast, "forecast", "", "forecast override, e.g. rain,clear")
	cmd.Flags().IntVar(&days, "days", 0, "override the number of days in the preferences file")
	return cmd
}

func venuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List the accessibility-filtered candidate pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, p, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			cands, reports, err := deps.Planner.Candidates(cmd.Context(), p)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tEST COST\tCONFIDENCE\tUNVERIFIED")
			for _, c := range cands {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%.2f\t%v\n",
					c.Venue.ID, c.Venue.Name, c.Venue.Category, c.EstCost, c.AccessConfidence(), c.Unverified)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, r := range reports {
				log.Info().Str("source", string(r.Source)).Int("records", r.Records).
					Int("dropped", r.Dropped).Str("error", string(r.Error)).Msg("source report")
			}
			return nil
		},
	}
}

func render(w io.Writer, it domain.Itinerary, format string) error {
	if format == "csv" {
		return httpserver.WriteCSV(w, it)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(it)
}
