package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skywatch/frame-sentinel/internal/detection"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id               TEXT PRIMARY KEY,
	signature            TEXT NOT NULL,
	started_at           TEXT NOT NULL,
	frame_count          INTEGER NOT NULL,
	sigma                REAL NOT NULL,
	detection_multiplier REAL NOT NULL,
	promising_multiplier REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS pairings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT NOT NULL,
	pair_index       INTEGER NOT NULL,
	reference_id     TEXT NOT NULL,
	comparison_id    TEXT NOT NULL,
	error            TEXT,
	threshold        REAL,
	promising_cutoff REAL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS candidates (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	pairing_id   INTEGER NOT NULL,
	candidate_id TEXT NOT NULL,
	x            INTEGER NOT NULL,
	y            INTEGER NOT NULL,
	magnitude    REAL NOT NULL,
	promising    INTEGER NOT NULL,
	FOREIGN KEY (pairing_id) REFERENCES pairings(id)
);
`

// Store persists detection runs in SQLite so candidate tables survive
// server sessions and can be queried later.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRecord describes one completed multi-temporal run.
type RunRecord struct {
	ID                  string    `json:"id"`
	Signature           string    `json:"signature"`
	StartedAt           time.Time `json:"started_at"`
	FrameCount          int       `json:"frame_count"`
	Sigma               float64   `json:"sigma"`
	DetectionMultiplier float64   `json:"detection_multiplier"`
	PromisingMultiplier float64   `json:"promising_multiplier"`
}

// PairingRecord is one stored pairing with its candidate table. Error is
// the captured failure message, empty for successful pairings.
type PairingRecord struct {
	Index           int                   `json:"index"`
	ReferenceID     string                `json:"reference_id"`
	ComparisonID    string                `json:"comparison_id"`
	Error           string                `json:"error,omitempty"`
	Threshold       float64               `json:"threshold"`
	PromisingCutoff float64               `json:"promising_cutoff"`
	Candidates      []detection.Candidate `json:"candidates"`
}

// SaveRun writes one run and all its pairings and candidates in a single
// transaction. Differential maps are not persisted; they can be regenerated
// from the source frames, and the catalog exists for the tabular results.
func (s *Store) SaveRun(run RunRecord, results []detection.ComparisonResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, signature, started_at, frame_count, sigma, detection_multiplier, promising_multiplier)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Signature, run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FrameCount, run.Sigma, run.DetectionMultiplier, run.PromisingMultiplier,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range results {
		var errText sql.NullString
		if res.Err != nil {
			errText = sql.NullString{String: res.Err.Error(), Valid: true}
		}

		r, err := tx.Exec(
			`INSERT INTO pairings (run_id, pair_index, reference_id, comparison_id, error, threshold, promising_cutoff)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i+1, res.ReferenceID, res.ComparisonID, errText,
			res.Thresholds.Detection, res.Thresholds.Promising,
		)
		if err != nil {
			return fmt.Errorf("insert pairing %d: %w", i+1, err)
		}
		pairingID, err := r.LastInsertId()
		if err != nil {
			return fmt.Errorf("pairing %d id: %w", i+1, err)
		}

		for _, c := range res.AllCandidates {
			_, err := tx.Exec(
				`INSERT INTO candidates (pairing_id, candidate_id, x, y, magnitude, promising)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				pairingID, c.ID, c.X, c.Y, c.Magnitude, boolToInt(c.Promising),
			)
			if err != nil {
				return fmt.Errorf("insert candidate %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 defaults
// to 20.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT run_id, signature, started_at, frame_count, sigma, detection_multiplier, promising_multiplier
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		if err := rows.Scan(&rec.ID, &rec.Signature, &startedAt, &rec.FrameCount,
			&rec.Sigma, &rec.DetectionMultiplier, &rec.PromisingMultiplier); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse run time: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun fetches one run and its pairings with full candidate tables.
// Candidates come back in insertion order, which is extraction order.
func (s *Store) GetRun(runID string) (RunRecord, []PairingRecord, error) {
	var rec RunRecord
	var startedAt string
	err := s.db.QueryRow(
		`SELECT run_id, signature, started_at, frame_count, sigma, detection_multiplier, promising_multiplier
		 FROM runs WHERE run_id = ?`, runID).
		Scan(&rec.ID, &rec.Signature, &startedAt, &rec.FrameCount,
			&rec.Sigma, &rec.DetectionMultiplier, &rec.PromisingMultiplier)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("parse run time: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, pair_index, reference_id, comparison_id, error, threshold, promising_cutoff
		 FROM pairings WHERE run_id = ? ORDER BY pair_index`, runID)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("query pairings: %w", err)
	}
	defer rows.Close()

	pairings := make([]PairingRecord, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var p PairingRecord
		var id int64
		var errText sql.NullString
		if err := rows.Scan(&id, &p.Index, &p.ReferenceID, &p.ComparisonID,
			&errText, &p.Threshold, &p.PromisingCutoff); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan pairing: %w", err)
		}
		p.Error = errText.String
		pairings = append(pairings, p)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, nil, err
	}

	for i, id := range ids {
		candidates, err := s.pairingCandidates(id)
		if err != nil {
			return RunRecord{}, nil, err
		}
		pairings[i].Candidates = candidates
	}

	return rec, pairings, nil
}

func (s *Store) pairingCandidates(pairingID int64) ([]detection.Candidate, error) {
	rows, err := s.db.Query(
		`SELECT candidate_id, x, y, magnitude, promising
		 FROM candidates WHERE pairing_id = ? ORDER BY id`, pairingID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]detection.Candidate, 0)
	for rows.Next() {
		var c detection.Candidate
		var promising int
		if err := rows.Scan(&c.ID, &c.X, &c.Y, &c.Magnitude, &promising); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Promising = promising != 0
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
