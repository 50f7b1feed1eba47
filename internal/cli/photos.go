package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/photos/flickr"
	"github.com/vijay-prabhu/tripvault/internal/tracker"
	"github.com/vijay-prabhu/tripvault/internal/trip"
)

var (
	photosParentDir     string
	photosText          string
	photosPrivacyFilter int
	photosTripDays      int
	photosNoCatalog     bool
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Download photos taken during each recorded trip",
	Long: `Photos reads the trip ledger and, for every trip whose folder exists,
searches your Flickr account for photos taken between the departure dates
and downloads the originals into the trip folder. Files already present
are left alone, so the command can be re-run safely.

On first run, you will be asked to authorize read access in a browser and
paste back the verification code.

Examples:
  tripvault photos                         # All trips in the ledger
  tripvault photos --text "holiday"        # Only photos matching text
  tripvault photos --privacy-filter 1      # Public photos only
  tripvault photos --default-trip-days 3   # Window for one-way trips`,
	RunE: runPhotos,
}

func init() {
	rootCmd.AddCommand(photosCmd)

	photosCmd.Flags().StringVarP(&photosParentDir, "parent-directory", "d", "", "Directory holding trip folders and the ledger (default: trips)")
	photosCmd.Flags().StringVar(&photosText, "text", "", "Free-text photo filter")
	photosCmd.Flags().IntVar(&photosPrivacyFilter, "privacy-filter", -1, "Flickr privacy filter 0-5 (default: from config, 2)")
	photosCmd.Flags().IntVar(&photosTripDays, "default-trip-days", 0, "Trip length in days when there is no return flight (default: 7)")
	photosCmd.Flags().BoolVar(&photosNoCatalog, "no-history", false, "Do not record the run in the history database")
}

func runPhotos(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if photosParentDir != "" {
		cfg.Trips.ParentDirectory = photosParentDir
	}
	if photosText != "" {
		cfg.Flickr.Text = photosText
	}
	if photosPrivacyFilter >= 0 {
		cfg.Flickr.PrivacyFilter = photosPrivacyFilter
	}
	if photosTripDays > 0 {
		cfg.Trips.DefaultTripDays = photosTripDays
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ledgerPath := cfg.LedgerPath()
	if _, err := os.Stat(ledgerPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("ledger '%s' not found (run 'tripvault emails' first)", ledgerPath)
		}
		return fmt.Errorf("failed to stat ledger: %w", err)
	}

	apiKey := os.Getenv(cfg.Flickr.APIKeyEnv)
	oauthConfig, err := flickr.NewConfig(apiKey, os.Getenv(cfg.Flickr.APISecretEnv))
	if err != nil {
		return fmt.Errorf("%w: export %s and %s", err, cfg.Flickr.APIKeyEnv, cfg.Flickr.APISecretEnv)
	}

	var db *database.DB
	if !photosNoCatalog {
		db, err = openCatalog(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	httpClient, err := flickr.Authorize(ctx, oauthConfig, cfg.Flickr.TokenPath, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	terminal := NewTerminal()
	m := tracker.NewMatcher(
		flickr.New(httpClient, apiKey),
		trip.NewStore(cfg.Trips.ParentDirectory),
		ledgerPath,
		db,
		os.Stdout,
		tracker.MatchOptions{
			UserID:          cfg.Flickr.UserID,
			Text:            cfg.Flickr.Text,
			PrivacyFilter:   cfg.Flickr.PrivacyFilter,
			PerPage:         cfg.Flickr.PerPage,
			DefaultTripDays: cfg.Trips.DefaultTripDays,
			Progress:        terminal.Progress(),
		},
	)

	result, err := m.Run(ctx)
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("photo run failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Photo run complete:")
	fmt.Printf("  Trips in ledger:     %d\n", result.Trips)
	fmt.Printf("  Trips searched:      %d\n", result.Searched)
	fmt.Printf("  Photos downloaded:   %d\n", result.Downloaded)
	fmt.Printf("  Already present:     %d\n", result.Existing)
	if result.MissingFolder > 0 {
		fmt.Printf("  Trips without folder: %d\n", result.MissingFolder)
	}
	if result.BadDates > 0 {
		fmt.Printf("  Unreadable dates:    %d\n", result.BadDates)
	}
	if result.NoURL > 0 {
		fmt.Printf("  No original URL:     %d\n", result.NoURL)
	}
	if result.Failed > 0 {
		fmt.Printf("  Failed downloads:    %d\n", result.Failed)
	}

	return nil
}
