package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/ledger"
	"github.com/vijay-prabhu/tripvault/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the trip ledger to XLSX, CSV or JSON",
	Long: `Export the trips recorded in the ledger.

Supported formats:
  - xlsx: Excel workbook with a "Trips" sheet (requires --file)
  - csv:  Ledger columns, header included
  - json: JSON array of trip records

Examples:
  tripvault export --format=xlsx --file trips.xlsx
  tripvault export --format=csv > trips-copy.csv
  tripvault export --format=json > trips.json`,
	RunE: runExport,
}

var (
	exportFormat    string
	exportFile      string
	exportParentDir string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Export format (xlsx, csv, json)")
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Output file (default: stdout; required for xlsx)")
	exportCmd.Flags().StringVarP(&exportParentDir, "parent-directory", "d", "", "Directory holding the ledger (default: trips)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if exportParentDir != "" {
		cfg.Trips.ParentDirectory = exportParentDir
	}

	records, err := ledger.Read(cfg.LedgerPath())
	if err != nil {
		return err
	}

	if exportFormat == "xlsx" {
		if exportFile == "" {
			return fmt.Errorf("--file is required for xlsx export")
		}
		if err := ledger.ExportXLSX(exportFile, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d trips to %s\n", len(records), exportFile)
		return nil
	}

	var w io.Writer = os.Stdout
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportFile, err)
		}
		defer f.Close()
		w = f
	}
	return exportRecords(w, exportFormat, records)
}

func exportRecords(w io.Writer, format string, records []flight.Record) error {
	switch format {
	case "csv":
		return ledger.WriteCSV(w, records)
	case "json":
		if records == nil {
			records = []flight.Record{}
		}
		return output.JSONTo(w, records)
	default:
		return fmt.Errorf("unknown format: %s (use xlsx, csv or json)", format)
	}
}
