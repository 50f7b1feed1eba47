package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vijay-prabhu/tripvault/internal/database"
	"github.com/vijay-prabhu/tripvault/internal/flight"
	"github.com/vijay-prabhu/tripvault/internal/ledger"
	"github.com/vijay-prabhu/tripvault/internal/logging"
	"github.com/vijay-prabhu/tripvault/internal/photos"
	"github.com/vijay-prabhu/tripvault/internal/trip"
)

const dateLayout = "2006-01-02"

// MatchOptions are the photo search settings shared by every trip
type MatchOptions struct {
	UserID          string
	Text            string
	PrivacyFilter   int
	PerPage         int
	DefaultTripDays int
	Progress        ProgressCallback
}

// MatchResult contains the counters of a photo run
type MatchResult struct {
	Trips         int
	BadDates      int
	MissingFolder int
	Searched      int
	Downloaded    int
	Existing      int
	NoURL         int
	Failed        int
}

// Matcher attaches photos to trips that already have a folder
type Matcher struct {
	service    photos.Service
	store      *trip.Store
	ledgerPath string
	db         *database.DB
	out        io.Writer
	opts       MatchOptions
}

// NewMatcher creates a Matcher. db may be nil.
func NewMatcher(service photos.Service, store *trip.Store, ledgerPath string, db *database.DB, out io.Writer, opts MatchOptions) *Matcher {
	if out == nil {
		out = io.Discard
	}
	if opts.DefaultTripDays <= 0 {
		opts.DefaultTripDays = 7
	}
	return &Matcher{
		service:    service,
		store:      store,
		ledgerPath: ledgerPath,
		db:         db,
		out:        out,
		opts:       opts,
	}
}

// Window returns the photo search range for a trip. The last day of the
// trip is the inbound departure date, or the outbound date plus
// defaultDays; a trip with only an inbound date starts defaultDays before
// it. end is the day after the last day, since a bare date bounds taken
// times at midnight. Dates not in YYYY-MM-DD form count as absent.
func Window(rec flight.Record, defaultDays int) (start, end string, ok bool) {
	out, outErr := time.Parse(dateLayout, rec.OutboundDepartureDate)
	in, inErr := time.Parse(dateLayout, rec.InboundDepartureDate)

	var first, last time.Time
	switch {
	case outErr == nil && inErr == nil:
		first, last = out, in
	case outErr == nil:
		first, last = out, out.AddDate(0, 0, defaultDays)
	case inErr == nil:
		first, last = in.AddDate(0, 0, -defaultDays), in
	default:
		return "", "", false
	}
	return first.Format(dateLayout), last.AddDate(0, 0, 1).Format(dateLayout), true
}

// Run processes every ledger row in order
func (m *Matcher) Run(ctx context.Context) (*MatchResult, error) {
	records, err := ledger.Read(m.ledgerPath)
	if err != nil {
		return nil, err
	}

	var run *database.Run
	if m.db != nil {
		run, err = m.db.StartRun(ctx, database.RunPhotos)
		if err != nil {
			return nil, fmt.Errorf("failed to start run: %w", err)
		}
	}

	result := &MatchResult{Trips: len(records)}
	started := time.Now()
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		m.opts.Progress.report(PhaseMatching, i, len(records), started, "Matching trips")

		if err := m.matchTrip(ctx, rec, result, run); err != nil {
			return result, err
		}
	}
	m.opts.Progress.report(PhaseMatching, len(records), len(records), started, "Matching complete")

	if run != nil {
		run.Processed = result.Searched
		run.Saved = result.Downloaded
		run.Skipped = result.Existing + result.NoURL + result.MissingFolder + result.BadDates
		run.Failed = result.Failed
		if err := m.db.FinishRun(ctx, run); err != nil {
			logging.Log.Warnf("Failed to finish run: %v", err)
		}
	}
	return result, nil
}

func (m *Matcher) matchTrip(ctx context.Context, rec flight.Record, result *MatchResult, run *database.Run) error {
	start, end, ok := Window(rec, m.opts.DefaultTripDays)
	if !ok {
		result.BadDates++
		logging.Log.WithFields(map[string]any{
			"booking_reference": rec.BookingReference,
			"outbound":          rec.OutboundDepartureDate,
			"inbound":           rec.InboundDepartureDate,
		}).Warn("Unparseable trip dates, skipping")
		return nil
	}

	folder, _ := m.store.FolderPath(rec)
	if !m.store.Exists(rec) {
		result.MissingFolder++
		logging.Log.WithField("folder", folder).Debug("Trip folder absent, skipping")
		return nil
	}

	fmt.Fprintf(m.out, "Processing trip: %s\n", filepath.Base(folder))
	result.Searched++

	params := photos.SearchParams{
		UserID:        m.opts.UserID,
		Text:          m.opts.Text,
		MinTakenDate:  start,
		MaxTakenDate:  end,
		PrivacyFilter: m.opts.PrivacyFilter,
		PerPage:       m.opts.PerPage,
	}

	count := 0
	for photo, err := range m.service.Search(ctx, params) {
		if err != nil {
			return fmt.Errorf("photo search for %s failed: %w", filepath.Base(folder), err)
		}
		count++

		if photo.URLOriginal == "" {
			result.NoURL++
			logging.Log.WithField("photo_id", photo.ID).Info("No original URL, skipping")
			continue
		}

		path := filepath.Join(folder, photo.Filename())
		if _, err := os.Stat(path); err == nil {
			result.Existing++
			continue
		}

		err := m.service.Download(ctx, photo, path)
		var statusErr *photos.StatusError
		switch {
		case errors.As(err, &statusErr):
			result.Failed++
			logging.Log.WithField("photo_id", photo.ID).Warn(statusErr.Error())
			continue
		case errors.Is(err, photos.ErrNoURL):
			result.NoURL++
			continue
		case err != nil:
			return err
		}

		result.Downloaded++
		m.opts.Progress.report(PhaseDownloading, result.Downloaded, 0, time.Time{}, "Downloading photos")
		fmt.Fprintf(m.out, "Downloaded %s\n", path)
		m.recordDownload(ctx, photo, folder, path, run)
	}

	if count == 0 {
		fmt.Fprintf(m.out, "No photos found for %s.\n", filepath.Base(folder))
	} else {
		fmt.Fprintf(m.out, "Saved %d photos to %s\n", count, filepath.Base(folder))
	}
	return nil
}

func (m *Matcher) recordDownload(ctx context.Context, photo photos.Photo, folder, path string, run *database.Run) {
	if m.db == nil {
		return
	}
	d := &database.PhotoDownload{PhotoID: photo.ID, Folder: folder, Path: path}
	if run != nil {
		d.RunID = &run.ID
	}
	if err := m.db.RecordDownload(ctx, d); err != nil {
		logging.Log.WithField("photo_id", photo.ID).Warnf("Failed to record download: %v", err)
	}
}
