package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/setevik/rfkpi/internal/kpi"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReport(failed bool) *kpi.Report {
	outcome := kpi.OutcomePass
	if failed {
		outcome = kpi.OutcomeFail
	}
	return &kpi.Report{
		LineCount:      10,
		MalformedCount: 1,
		SampleCount:    2,
		AttemptCount:   1,
		Verdicts: []kpi.Verdict{
			{Name: "rsrp", Outcome: outcome, Summary: "RSRP: 0/2 samples below -110 dBm (0.0%), limit 20%"},
			{Name: "call_setup", Outcome: kpi.OutcomeNoData, Summary: "call setup: no request/complete pair"},
		},
	}
}

func TestInsertAndQuery(t *testing.T) {
	db := openTestDB(t)

	run := NewRun("bench01", "drive_test.txt", sampleReport(false))
	if err := db.Insert(run); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	runs, err := db.Query(QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID {
		t.Errorf("id = %q, want %q", got.ID, run.ID)
	}
	if got.InstanceID != "bench01" {
		t.Errorf("instance = %q, want bench01", got.InstanceID)
	}
	if got.Source != "drive_test.txt" {
		t.Errorf("source = %q, want drive_test.txt", got.Source)
	}
	if !got.Passed {
		t.Error("run should be passed")
	}
	if got.LineCount != 10 || got.SampleCount != 2 || got.AttemptCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 10/2/1", got.LineCount, got.SampleCount, got.AttemptCount)
	}
	if len(got.Verdicts) != 2 {
		t.Fatalf("verdicts = %d, want 2", len(got.Verdicts))
	}
	if got.Verdicts[0].Name != "rsrp" || got.Verdicts[0].Outcome != kpi.OutcomePass {
		t.Errorf("verdict[0] = %+v", got.Verdicts[0])
	}
}

func TestNewRunPassedFlag(t *testing.T) {
	passing := NewRun("bench01", "a.txt", sampleReport(false))
	if !passing.Passed {
		t.Error("report without FAIL verdicts should produce a passed run")
	}

	failing := NewRun("bench01", "b.txt", sampleReport(true))
	if failing.Passed {
		t.Error("report with a FAIL verdict should produce a failed run")
	}
}

func TestQueryOnlyFailed(t *testing.T) {
	db := openTestDB(t)

	if err := db.Insert(NewRun("bench01", "good.txt", sampleReport(false))); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(NewRun("bench01", "bad.txt", sampleReport(true))); err != nil {
		t.Fatal(err)
	}

	runs, err := db.Query(QueryFilter{OnlyFailed: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("failed runs = %d, want 1", len(runs))
	}
	if runs[0].Source != "bad.txt" {
		t.Errorf("source = %q, want bad.txt", runs[0].Source)
	}
}

func TestQueryFilters(t *testing.T) {
	db := openTestDB(t)

	old := NewRun("bench01", "old.txt", sampleReport(false))
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	if err := db.Insert(old); err != nil {
		t.Fatal(err)
	}

	recent := NewRun("bench02", "recent.txt", sampleReport(false))
	if err := db.Insert(recent); err != nil {
		t.Fatal(err)
	}

	runs, err := db.Query(QueryFilter{Since: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(runs) != 1 || runs[0].Source != "recent.txt" {
		t.Errorf("since filter returned %d runs", len(runs))
	}

	runs, err = db.Query(QueryFilter{InstanceID: "bench01"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(runs) != 1 || runs[0].Source != "old.txt" {
		t.Errorf("instance filter returned %d runs", len(runs))
	}

	runs, err = db.Query(QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("limit filter returned %d runs, want 1", len(runs))
	}
	// Ordered by timestamp descending: the recent run comes first.
	if runs[0].Source != "recent.txt" {
		t.Errorf("first run = %q, want recent.txt", runs[0].Source)
	}
}

func TestPurge(t *testing.T) {
	db := openTestDB(t)

	old := NewRun("bench01", "old.txt", sampleReport(false))
	old.Timestamp = time.Now().Add(-100 * 24 * time.Hour)
	if err := db.Insert(old); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(NewRun("bench01", "recent.txt", sampleReport(false))); err != nil {
		t.Fatal(err)
	}

	purged, err := db.Purge(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCountEmpty(t *testing.T) {
	db := openTestDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
