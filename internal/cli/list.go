package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/ledger"
	"github.com/vijay-prabhu/tripvault/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trips recorded in the ledger",
	Long: `List the trips recorded in the CSV ledger, one row per saved email.

Examples:
  tripvault list                 # All trips
  tripvault list --since=1m      # Trips departing in the last month or later
  tripvault list -o json         # Output as JSON`,
	RunE: runList,
}

var (
	listParentDir string
	listSince     string
	listLimit     int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listParentDir, "parent-directory", "d", "", "Directory holding the ledger (default: trips)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only trips departing after now minus this (e.g., 7d, 2w, 1m)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of results")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listParentDir != "" {
		cfg.Trips.ParentDirectory = listParentDir
	}

	records, err := ledger.Read(cfg.LedgerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No ledger yet. Run 'tripvault emails' first.")
			return nil
		}
		return err
	}

	if listSince != "" {
		since, err := parseDuration(listSince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		records = departingAfter(records, time.Now().Add(-since))
	}
	if listLimit > 0 && len(records) > listLimit {
		records = records[:listLimit]
	}

	return output.Write(os.Stdout, outputFormat, records)
}

// departingAfter keeps records whose outbound date is on or after t.
// Records without a parseable outbound date are dropped.
func departingAfter(records []flight.Record, t time.Time) []flight.Record {
	cutoff := t.Format("2006-01-02")
	var out []flight.Record
	for _, r := range records {
		if _, err := time.Parse("2006-01-02", r.OutboundDepartureDate); err != nil {
			continue
		}
		if r.OutboundDepartureDate >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// parseDuration parses a human-readable duration like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use d, w, or m)", unit)
	}
}
