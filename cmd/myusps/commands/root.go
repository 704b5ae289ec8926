package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	_ "time/tzdata"

	"myusps/internal/components/chrono"
	"myusps/internal/components/serviceutil"
	"myusps/internal/components/telemetry"
	"myusps/internal/cookiestore"
	"myusps/internal/usps"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	jsonOutput bool
	eagerLogin bool

	// endpoints overrides the live site, nil means usps.DefaultEndpoints.
	endpoints *usps.Endpoints
)

var rootCmd = &cobra.Command{
	Use:   "myusps",
	Short: "myusps reads packages, scanned mail and profile details from a USPS account.",
	// errors are reported once by ExecuteContext
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		if verbose {
			slog.DebugContext(cmd.Context(), "verbose logging enabled")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON instead of a table.")
	rootCmd.PersistentFlags().BoolVar(&eagerLogin, "login", false, "Log in even if saved cookies exist.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

func chronoFor(timezone string) (chrono.API, error) {
	return chrono.NewStandardImpl(timezone)
}

// withSession reads the config, sets up telemetry and the cookie store, then
// runs fn with a ready session. Everything opened here is closed before it
// returns.
func withSession(ctx context.Context, fn func(s *usps.Session) error) error {
	cfg, err := readConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var reporter telemetry.API = telemetry.SlogAPI{}
	if cfg.Telemetry.Enabled() {
		tel, err := telemetry.Setup(ctx, "myusps", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer tel.Shutdown(context.Background())

		if tel.MeterProvider != nil {
			reporter, err = telemetry.NewMetricAPI(reporter, tel.MeterProvider.Meter("myusps"))
			if err != nil {
				return fmt.Errorf("setup metrics: %w", err)
			}
		}
	}

	store, closeStore, err := cookiestore.Open(ctx, cfg.Cookies)
	if err != nil {
		return fmt.Errorf("open cookie store: %w", err)
	}
	defer closeStore()

	opts, err := cfg.options(store, reporter)
	if err != nil {
		return err
	}
	opts.EagerLogin = eagerLogin
	opts.Endpoints = endpoints

	slog.DebugContext(ctx, "opening session")
	session, err := usps.GetSession(ctx, usps.NewCredentials(cfg.Username, cfg.Password), opts)
	if err != nil {
		return err
	}
	return fn(session)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
