package database

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"messages", "photo_downloads", "runs"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query tables: %v", err)
		}
		if count != 1 {
			t.Errorf("expected %s table to exist", table)
		}
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != len(migrations) {
		t.Errorf("user_version = %d, want %d", version, len(migrations))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.RecordMessage(ctx, &Message{MessageID: "m1", Provider: "gmail", Extractor: "heuristic", Status: StatusSaved}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	saved, err := db.IsSaved(ctx, "m1")
	if err != nil || !saved {
		t.Errorf("IsSaved() = %v, %v after reopen", saved, err)
	}
}

func TestMessageUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	raw := "not json"
	m := &Message{
		MessageID:   "abc",
		Provider:    "gmail",
		Subject:     OptionalString("Your flight"),
		Extractor:   "model/openai:deepseek-chat",
		Status:      StatusParseFailed,
		RawResponse: &raw,
	}
	if err := db.RecordMessage(ctx, m); err != nil {
		t.Fatalf("RecordMessage() error = %v", err)
	}

	got, err := db.GetMessage(ctx, "abc")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if got == nil || got.Status != StatusParseFailed || got.RawResponse == nil || *got.RawResponse != raw {
		t.Fatalf("GetMessage() = %+v", got)
	}
	if got.Folder != nil {
		t.Errorf("Folder = %v, want nil", *got.Folder)
	}

	saved, _ := db.IsSaved(ctx, "abc")
	if saved {
		t.Error("parse_failed message reported as saved")
	}

	m.ID = ""
	m.Status = StatusSaved
	m.Folder = OptionalString("trips/2025-01-11")
	m.RawResponse = nil
	if err := db.RecordMessage(ctx, m); err != nil {
		t.Fatalf("second RecordMessage() error = %v", err)
	}

	all, err := db.ListMessages(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 message after upsert, got %d", len(all))
	}
	if all[0].Status != StatusSaved || all[0].Folder == nil || *all[0].Folder != "trips/2025-01-11" {
		t.Errorf("upserted message = %+v", all[0])
	}

	missing, err := db.GetMessage(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetMessage(missing) = %v, %v", missing, err)
	}
}

func TestListMessages_Filter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	statuses := []MessageStatus{StatusSaved, StatusSkipped, StatusSaved, StatusParseFailed}
	for i, s := range statuses {
		m := &Message{MessageID: string(rune('a' + i)), Provider: "imap", Extractor: "heuristic", Status: s}
		if err := db.RecordMessage(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	saved := StatusSaved
	got, err := db.ListMessages(ctx, ListOptions{Status: &saved})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 saved messages, got %d", len(got))
	}

	got, err = db.ListMessages(ctx, ListOptions{Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected limit of 3, got %d", len(got))
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Messages != 4 || stats.Saved != 2 || stats.Skipped != 1 || stats.ParseFailed != 1 {
		t.Errorf("GetStats() = %+v", stats)
	}
}

func TestRunsAndDownloads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run, err := db.StartRun(ctx, RunPhotos)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	for _, id := range []string{"1", "2", "1"} {
		d := &PhotoDownload{PhotoID: id, Folder: "trips/2025-01-11", Path: "trips/2025-01-11/" + id + ".jpg", RunID: &run.ID}
		if err := db.RecordDownload(ctx, d); err != nil {
			t.Fatalf("RecordDownload() error = %v", err)
		}
	}

	downloads, err := db.ListDownloads(ctx, "trips/2025-01-11")
	if err != nil {
		t.Fatal(err)
	}
	if len(downloads) != 2 {
		t.Errorf("expected 2 downloads, got %d", len(downloads))
	}

	run.Processed = 3
	run.Saved = 2
	if err := db.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := db.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].FinishedAt == nil || runs[0].Saved != 2 || runs[0].Kind != RunPhotos {
		t.Errorf("ListRuns() = %+v", runs)
	}

	if err := db.FinishRun(ctx, &Run{ID: "missing"}); err == nil {
		t.Error("expected error finishing unknown run")
	}
}
