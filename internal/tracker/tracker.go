// Package tracker runs the two pipelines: emails to trip folders and the
// ledger, and ledger trips to downloaded photos.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/email"
	"github.com/vijay-prabhu/tripvault/internal/extract"
	"github.com/vijay-prabhu/tripvault/internal/ledger"
	"github.com/vijay-prabhu/tripvault/internal/logging"
	"github.com/vijay-prabhu/tripvault/internal/trip"
)

// Tracker turns flight-confirmation emails into trip folders and ledger rows
type Tracker struct {
	mailbox    email.Mailbox
	extractor  extract.Extractor
	store      *trip.Store
	ledgerPath string
	db         *database.DB
	out        io.Writer
}

// New creates a Tracker. db may be nil, in which case no history is kept.
func New(mb email.Mailbox, ex extract.Extractor, store *trip.Store, ledgerPath string, db *database.DB, out io.Writer) *Tracker {
	if out == nil {
		out = io.Discard
	}
	return &Tracker{
		mailbox:    mb,
		extractor:  ex,
		store:      store,
		ledgerPath: ledgerPath,
		db:         db,
		out:        out,
	}
}

// Options configures a run
type Options struct {
	SkipSaved bool             // Skip messages the catalog already saved
	Limit     int              // Stop after this many messages (0 = all)
	DryRun    bool             // Extract and print, write nothing
	Progress  ProgressCallback // Optional progress callback
}

// Result contains the counters of a run
type Result struct {
	Found        int
	Processed    int
	Saved        int
	Skipped      int
	ParseFailed  int
	AlreadySaved int
	Folders      []string
}

// Run searches the mailbox and processes every match in order. Transport
// and extraction-service errors abort the run; records without dates and
// undecodable replies are skipped.
func (t *Tracker) Run(ctx context.Context, query string, opts Options) (*Result, error) {
	result := &Result{}
	started := time.Now()

	opts.Progress.report(PhaseSearching, 0, 0, started, "Searching mailbox")
	ids, err := email.Collect(t.mailbox.Search(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}
	if opts.Limit > 0 && len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}
	result.Found = len(ids)
	fmt.Fprintln(t.out, "Found", len(ids), "emails")

	var run *database.Run
	if t.db != nil && !opts.DryRun {
		run, err = t.db.StartRun(ctx, database.RunEmails)
		if err != nil {
			return nil, fmt.Errorf("failed to start run: %w", err)
		}
	}

	extractStarted := time.Now()
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		opts.Progress.report(PhaseExtracting, i, len(ids), extractStarted, "Extracting flight data")

		if opts.SkipSaved && t.db != nil {
			saved, err := t.db.IsSaved(ctx, id)
			if err != nil {
				return result, fmt.Errorf("failed to check catalog: %w", err)
			}
			if saved {
				result.AlreadySaved++
				logging.Log.WithField("message_id", id).Debug("Already saved, skipping")
				continue
			}
		}

		if err := t.processOne(ctx, id, result, run, opts.DryRun); err != nil {
			return result, err
		}
	}
	opts.Progress.report(PhaseExtracting, len(ids), len(ids), extractStarted, "Extraction complete")

	if run != nil {
		run.Processed = result.Processed
		run.Saved = result.Saved
		run.Skipped = result.Skipped
		run.Failed = result.ParseFailed
		if err := t.db.FinishRun(ctx, run); err != nil {
			logging.Log.Warnf("Failed to finish run: %v", err)
		}
	}

	fmt.Fprintln(t.out, "Done")
	return result, nil
}

func (t *Tracker) processOne(ctx context.Context, id string, result *Result, run *database.Run, dryRun bool) error {
	msg, err := t.mailbox.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	result.Processed++
	fmt.Fprintf(t.out, "%02d. Extracting data from %s sent %s\n", result.Processed, msg.Subject, msg.Date)

	res, err := t.extractor.Extract(ctx, msg)
	if err != nil {
		return err
	}

	entry := &database.Message{
		MessageID:  id,
		Provider:   t.mailbox.Name(),
		Subject:    database.OptionalString(msg.Subject),
		Sender:     database.OptionalString(email.SenderAddress(msg.From)),
		DateHeader: database.OptionalString(msg.Date),
		Extractor:  t.extractor.Name(),
	}
	if run != nil {
		entry.RunID = &run.ID
	}

	if dryRun {
		t.printDryRun(res)
		fmt.Fprintln(t.out)
		return nil
	}

	if res.Failed() {
		result.ParseFailed++
		logging.Log.WithField("message_id", id).Warnf("Could not parse extraction reply: %s", res.Failure.Raw)
		fmt.Fprintln(t.out, "Skipping: could not parse extraction reply.")
		entry.Status = database.StatusParseFailed
		entry.RawResponse = &res.Failure.Raw
		t.record(ctx, entry)
		fmt.Fprintln(t.out)
		return nil
	}

	folder, err := t.store.Save(msg, res.Record)
	if errors.Is(err, trip.ErrMissingDates) {
		result.Skipped++
		logging.Log.WithField("message_id", id).Info("No departure dates, skipping")
		fmt.Fprintln(t.out, "Skipping: Missing flight dates.")
		entry.Status = database.StatusSkipped
		t.record(ctx, entry)
		fmt.Fprintln(t.out)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Saved email to %s\n", folder)

	if err := ledger.Append(t.ledgerPath, res.Record); err != nil {
		return err
	}
	ref := res.Record.BookingReference
	if ref == "" {
		ref = "N/A"
	}
	fmt.Fprintf(t.out, "Added to CSV: %s\n", ref)

	result.Saved++
	result.Folders = append(result.Folders, folder)
	entry.Status = database.StatusSaved
	entry.Folder = &folder
	entry.BookingReference = database.OptionalString(res.Record.BookingReference)
	t.record(ctx, entry)
	fmt.Fprintln(t.out)
	return nil
}

// record writes history; the catalog is advisory so failures only warn
func (t *Tracker) record(ctx context.Context, m *database.Message) {
	if t.db == nil {
		return
	}
	if err := t.db.RecordMessage(ctx, m); err != nil {
		logging.Log.WithField("message_id", m.MessageID).Warnf("Failed to record message: %v", err)
	}
}

func (t *Tracker) printDryRun(res *extract.Result) {
	var v any = res.Record
	if res.Failed() {
		v = res.Failure.Sentinel()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(t.out, string(data))
	if !res.Failed() {
		if name, ok := trip.FolderName(res.Record); ok {
			fmt.Fprintf(t.out, "Would save to %s\n", name)
		} else {
			fmt.Fprintln(t.out, "Would skip: missing flight dates")
		}
	}
}
