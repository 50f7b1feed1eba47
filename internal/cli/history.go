package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show processed emails from the history database",
	Long: `History lists the emails earlier runs have processed and what became
of each one: saved to a trip folder, skipped for missing dates, or an
extraction reply that could not be parsed.

Examples:
  tripvault history                          # Recent messages
  tripvault history --status=parse_failed    # Replies that need a look
  tripvault history show <message-id>        # Full entry with raw reply
  tripvault history runs                     # Past runs
  tripvault history photos "2025-01-11 to 2025-01-18"  # Photos for one trip
  tripvault history stats                    # Totals`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <message-id>",
	Short: "Show one processed message",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past runs",
	RunE:  runHistoryRuns,
}

var historyPhotosCmd = &cobra.Command{
	Use:   "photos [trip-folder]",
	Short: "List downloaded photos, optionally for one trip folder",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryPhotos,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history totals",
	RunE:  runHistoryStats,
}

var (
	historyStatus string
	historySince  string
	historyLimit  int
	runsLimit     int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyPhotosCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Filter by status (saved, skipped, parse_failed)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Filter by processing time (e.g., 7d, 2w, 1m)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of results (0 = all)")
	historyRunsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs")
}

func openHistory() (*database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openCatalog(cfg)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts := database.ListOptions{Limit: historyLimit}
	if historyStatus != "" {
		status := database.MessageStatus(historyStatus)
		switch status {
		case database.StatusSaved, database.StatusSkipped, database.StatusParseFailed:
		default:
			return fmt.Errorf("unknown status: %s", historyStatus)
		}
		opts.Status = &status
	}
	if historySince != "" {
		since, err := parseDuration(historySince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-since)
		opts.Since = &sinceTime
	}

	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	messages, err := db.ListMessages(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	return output.Write(os.Stdout, outputFormat, messages)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.GetMessage(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if m == nil {
		return fmt.Errorf("message not found: %s", args[0])
	}

	if outputFormat == output.FormatJSON {
		return output.JSONTo(os.Stdout, m)
	}

	fmt.Printf("Message:    %s\n", m.MessageID)
	fmt.Printf("Provider:   %s\n", m.Provider)
	fmt.Printf("Subject:    %s\n", deref(m.Subject))
	fmt.Printf("From:       %s\n", deref(m.Sender))
	fmt.Printf("Sent:       %s\n", deref(m.DateHeader))
	fmt.Printf("Extractor:  %s\n", m.Extractor)
	fmt.Printf("Status:     %s\n", m.Status)
	fmt.Printf("Processed:  %s\n", m.ProcessedAt.Local().Format("2006-01-02 15:04"))
	if m.Folder != nil {
		fmt.Printf("Folder:     %s\n", *m.Folder)
	}
	if m.BookingReference != nil {
		fmt.Printf("Booking:    %s\n", *m.BookingReference)
	}
	if m.RawResponse != nil {
		fmt.Println()
		fmt.Println("Raw reply:")
		fmt.Println(*m.RawResponse)
	}
	return nil
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return output.Write(os.Stdout, outputFormat, runs)
}

func runHistoryPhotos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Downloads are keyed by the full folder path; accept a bare trip name
	folder := ""
	if len(args) == 1 {
		folder = args[0]
		if filepath.Base(folder) == folder {
			folder = filepath.Join(cfg.Trips.ParentDirectory, folder)
		}
	}

	downloads, err := db.ListDownloads(cmd.Context(), folder)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}
	return output.Write(os.Stdout, outputFormat, downloads)
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	return output.Write(os.Stdout, outputFormat, stats)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
