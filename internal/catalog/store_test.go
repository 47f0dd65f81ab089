package catalog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/skywatch/frame-sentinel/internal/detection"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, startedAt time.Time) RunRecord {
	return RunRecord{
		ID:                  id,
		Signature:           "FS-" + id,
		StartedAt:           startedAt,
		FrameCount:          3,
		Sigma:               15,
		DetectionMultiplier: 5,
		PromisingMultiplier: 3,
	}
}

func sampleResults() []detection.ComparisonResult {
	return []detection.ComparisonResult{
		{
			ReferenceID:  "ref.png",
			ComparisonID: "broken.png",
			Err:          errors.New("load comparison frame: corrupt"),
		},
		{
			ReferenceID:  "ref.png",
			ComparisonID: "cmp.png",
			Thresholds:   detection.Thresholds{Detection: 42.5, Promising: 127.5},
			AllCandidates: []detection.Candidate{
				{ID: "Diff-2-1", X: 10, Y: 20, Magnitude: 310.25, Promising: true, Signature: "FS-run-1"},
				{ID: "Diff-2-2", X: 11, Y: 20, Magnitude: 95.5, Promising: false, Signature: "FS-run-1"},
				{ID: "Diff-2-3", X: 12, Y: 21, Magnitude: 200.75, Promising: true, Signature: "FS-run-1"},
			},
		},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	store := openTestStore(t)

	// A fresh catalog lists no runs
	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("fresh catalog: got %d runs, want 0", len(runs))
	}
}

func TestSaveRun_GetRun_Roundtrip(t *testing.T) {
	store := openTestStore(t)

	startedAt := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	run := sampleRun("run-1", startedAt)

	if err := store.SaveRun(run, sampleResults()); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, pairings, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if got.ID != "run-1" || got.Signature != "FS-run-1" {
		t.Errorf("run record: got %+v", got)
	}
	if !got.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt: got %v, want %v", got.StartedAt, startedAt)
	}
	if got.FrameCount != 3 || got.Sigma != 15 {
		t.Errorf("run parameters: got %+v", got)
	}

	if len(pairings) != 2 {
		t.Fatalf("got %d pairings, want 2", len(pairings))
	}

	// Failed pairing keeps its error text and has no candidates
	failed := pairings[0]
	if failed.Index != 1 || failed.ComparisonID != "broken.png" {
		t.Errorf("failed pairing: got %+v", failed)
	}
	if failed.Error == "" {
		t.Error("failed pairing should keep its error message")
	}
	if len(failed.Candidates) != 0 {
		t.Errorf("failed pairing: got %d candidates, want 0", len(failed.Candidates))
	}

	// Successful pairing round-trips thresholds and candidates in order
	ok := pairings[1]
	if ok.Index != 2 || ok.Error != "" {
		t.Errorf("successful pairing: got %+v", ok)
	}
	if ok.Threshold != 42.5 || ok.PromisingCutoff != 127.5 {
		t.Errorf("thresholds: got %f/%f, want 42.5/127.5", ok.Threshold, ok.PromisingCutoff)
	}
	if len(ok.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(ok.Candidates))
	}

	wantIDs := []string{"Diff-2-1", "Diff-2-2", "Diff-2-3"}
	for i, c := range ok.Candidates {
		if c.ID != wantIDs[i] {
			t.Errorf("candidate %d: got %s, want %s (order must survive the roundtrip)", i, c.ID, wantIDs[i])
		}
	}
	if !ok.Candidates[0].Promising || ok.Candidates[1].Promising || !ok.Candidates[2].Promising {
		t.Error("promising flags did not survive the roundtrip")
	}
	if ok.Candidates[0].Magnitude != 310.25 {
		t.Errorf("magnitude: got %f, want 310.25", ok.Candidates[0].Magnitude)
	}
	if ok.Candidates[0].X != 10 || ok.Candidates[0].Y != 20 {
		t.Errorf("coordinates: got (%d,%d), want (10,20)", ok.Candidates[0].X, ok.Candidates[0].Y)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.SaveRun(run, nil); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	runs, err := store.ListRuns(0) // 0 defaults the limit
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" || runs[2].ID != "old" {
		t.Errorf("order: got %s, %s, %s, want new, mid, old", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestListRuns_Limit(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(run, nil); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestGetRun_Unknown(t *testing.T) {
	store := openTestStore(t)

	_, _, err := store.GetRun("no-such-run")
	if err == nil {
		t.Error("GetRun should fail for an unknown run ID")
	}
}

func TestSaveRun_DuplicateID(t *testing.T) {
	store := openTestStore(t)

	run := sampleRun("dup", time.Now().UTC())
	if err := store.SaveRun(run, nil); err != nil {
		t.Fatalf("first SaveRun failed: %v", err)
	}
	if err := store.SaveRun(run, nil); err == nil {
		t.Error("second SaveRun with the same ID should fail on the primary key")
	}
}
