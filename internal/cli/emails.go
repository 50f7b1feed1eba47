package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/extract"
	"github.com/vijay-prabhu/tripvault/internal/llm"
	"github.com/vijay-prabhu/tripvault/internal/logging"
	"github.com/vijay-prabhu/tripvault/internal/tracker"
	"github.com/vijay-prabhu/tripvault/internal/trip"
)

var (
	emailsParentDir string
	emailsQueryFile string
	emailsQuery     string
	emailsProvider  string
	emailsStrategy  string
	emailsSkipSaved bool
	emailsDryRun    bool
	emailsLimit     int
	emailsNoCatalog bool
)

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "Archive flight-confirmation emails into trip folders",
	Long: `Emails searches your mailbox with the saved query, extracts flight
details from every match and files the email into a folder named after
the trip dates. Each saved trip is appended to the CSV ledger.

On first run with Gmail, a browser opens for Google authentication.

Examples:
  tripvault emails                               # Use email-query.txt
  tripvault emails --query "from:airline.com"    # Literal query
  tripvault emails --strategy heuristic          # No LLM, pattern matching only
  tripvault emails --skip-processed              # Skip emails saved by earlier runs
  tripvault emails --dry-run --limit 5           # Print extractions, write nothing`,
	RunE: runEmails,
}

func init() {
	rootCmd.AddCommand(emailsCmd)

	emailsCmd.Flags().StringVarP(&emailsParentDir, "parent-directory", "d", "", "Directory holding trip folders and the ledger (default: trips)")
	emailsCmd.Flags().StringVarP(&emailsQueryFile, "query-file", "q", "", "File with the mailbox search query (default: email-query.txt)")
	emailsCmd.Flags().StringVar(&emailsQuery, "query", "", "Literal mailbox search query (overrides --query-file)")
	emailsCmd.Flags().StringVar(&emailsProvider, "provider", "", "Mailbox provider (gmail, imap)")
	emailsCmd.Flags().StringVar(&emailsStrategy, "strategy", "", "Extraction strategy (model, heuristic)")
	emailsCmd.Flags().BoolVar(&emailsSkipSaved, "skip-processed", false, "Skip emails already saved by a previous run")
	emailsCmd.Flags().BoolVar(&emailsDryRun, "dry-run", false, "Extract and print records without writing anything")
	emailsCmd.Flags().IntVar(&emailsLimit, "limit", 0, "Process at most this many emails")
	emailsCmd.Flags().BoolVar(&emailsNoCatalog, "no-history", false, "Do not record the run in the history database")
}

func runEmails(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override file values
	if emailsParentDir != "" {
		cfg.Trips.ParentDirectory = emailsParentDir
	}
	if emailsQueryFile != "" {
		cfg.Mail.QueryFile = emailsQueryFile
	}
	if emailsQuery != "" {
		cfg.Mail.Query = emailsQuery
	}
	if emailsProvider != "" {
		cfg.Mail.Provider = emailsProvider
	}
	if emailsStrategy != "" {
		cfg.Extract.Strategy = emailsStrategy
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Local prerequisites first: query, credentials, API key
	query, err := cfg.ReadQuery()
	if err != nil {
		return err
	}

	mailbox, err := newMailbox(cfg)
	if err != nil {
		return err
	}

	var gen llm.Generator
	if cfg.Extract.Strategy == extract.StrategyModel {
		gen, err = newGenerator(ctx, cfg)
		if err != nil {
			return err
		}
	}
	extractor, err := extract.New(cfg.Extract.Strategy, gen, extract.WithSchemaCheck(cfg.Extract.SchemaCheck))
	if err != nil {
		return err
	}

	var db *database.DB
	if !emailsNoCatalog && !emailsDryRun {
		db, err = openCatalog(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
	} else if emailsSkipSaved {
		return fmt.Errorf("--skip-processed needs the history database")
	}

	fmt.Printf("Connecting to %s...\n", mailbox.Name())
	if err := mailbox.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	defer mailbox.Close()

	logging.Log.WithFields(map[string]any{
		"provider":  mailbox.Name(),
		"extractor": extractor.Name(),
		"query":     query,
	}).Info("Starting email run")

	t := tracker.New(mailbox, extractor, trip.NewStore(cfg.Trips.ParentDirectory), cfg.LedgerPath(), db, os.Stdout)

	terminal := NewTerminal()
	result, err := t.Run(ctx, query, tracker.Options{
		SkipSaved: emailsSkipSaved,
		Limit:     emailsLimit,
		DryRun:    emailsDryRun,
		Progress:  terminal.Progress(),
	})
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("email run failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Email run complete:")
	fmt.Printf("  Emails found:        %d\n", result.Found)
	fmt.Printf("  Processed:           %d\n", result.Processed)
	fmt.Printf("  Trips saved:         %d\n", result.Saved)
	fmt.Printf("  Skipped (no dates):  %d\n", result.Skipped)
	if result.ParseFailed > 0 {
		fmt.Printf("  Unparseable replies: %d\n", result.ParseFailed)
	}
	if result.AlreadySaved > 0 {
		fmt.Printf("  Already saved:       %d\n", result.AlreadySaved)
	}
	if !emailsDryRun && result.Saved > 0 {
		fmt.Println()
		fmt.Println("Run 'tripvault photos' to download photos for these trips.")
	}

	return nil
}
