// Package archive persists imported hands and analysis runs in SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/history"
)

// ErrHandNotFound reports a lookup for a hand id the store has never seen.
var ErrHandNotFound = errors.New("archive: hand not found")

// ErrNoRuns reports that no analysis run has been recorded yet.
var ErrNoRuns = errors.New("archive: no runs recorded")

// Store wraps a SQLite database holding hands, runs and their analyses.
type Store struct {
	db    *sql.DB
	clock quartz.Clock
}

// Open opens or creates the archive at path and applies the schema.
func Open(path string, clock quartz.Clock) (*Store, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	store := &Store{db: db, clock: clock}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return store, nil
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hands (
		id TEXT PRIMARY KEY,
		hero_id TEXT NOT NULL DEFAULT '',
		players INTEGER NOT NULL,
		actions INTEGER NOT NULL,
		big_blind REAL NOT NULL,
		imported_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		config TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analyses (
		run_id TEXT NOT NULL,
		hand_id TEXT NOT NULL,
		action_id TEXT NOT NULL,
		street INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		delta REAL NOT NULL,
		total_ev REAL NOT NULL,
		record TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, hand_id, action_id),
		FOREIGN KEY (run_id) REFERENCES runs(id),
		FOREIGN KEY (hand_id) REFERENCES hands(id)
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_hand ON analyses(hand_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_run ON analyses(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HandInfo is the metadata row kept alongside each archived hand.
type HandInfo struct {
	ID         string
	HeroID     string
	Players    int
	Actions    int
	BigBlind   float64
	ImportedAt time.Time
}

// PutHand stores the hand, replacing any previous copy with the same id.
func (s *Store) PutHand(ctx context.Context, h history.Hand) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode hand %s: %w", h.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO hands (id, hero_id, players, actions, big_blind, imported_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 hero_id = excluded.hero_id, players = excluded.players,
		 actions = excluded.actions, big_blind = excluded.big_blind,
		 imported_at = excluded.imported_at, payload = excluded.payload`,
		h.ID, h.HeroID, len(h.Players), len(h.Actions), h.BigBlind,
		s.clock.Now().UTC(), string(payload),
	)
	return err
}

// GetHand retrieves an archived hand by id.
func (s *Store) GetHand(ctx context.Context, id string) (history.Hand, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM hands WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return history.Hand{}, fmt.Errorf("%w: %s", ErrHandNotFound, id)
	}
	if err != nil {
		return history.Hand{}, err
	}
	var h history.Hand
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		return history.Hand{}, fmt.Errorf("decode hand %s: %w", id, err)
	}
	return h, nil
}

// ListHands returns metadata for every archived hand, oldest import first.
func (s *Store) ListHands(ctx context.Context) ([]HandInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hero_id, players, actions, big_blind, imported_at
		 FROM hands ORDER BY imported_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []HandInfo
	for rows.Next() {
		var info HandInfo
		if err := rows.Scan(&info.ID, &info.HeroID, &info.Players,
			&info.Actions, &info.BigBlind, &info.ImportedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// RunInfo describes one recorded analysis run.
type RunInfo struct {
	ID        string
	StartedAt time.Time
	Config    analyzer.Config
}

// BeginRun records a new analysis run and returns its id.
func (s *Store) BeginRun(ctx context.Context, cfg analyzer.Config) (string, error) {
	snapshot, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, config) VALUES (?, ?, ?)`,
		id, s.clock.Now().UTC(), string(snapshot),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	var info RunInfo
	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, config FROM runs
		 ORDER BY started_at DESC, id LIMIT 1`,
	).Scan(&info.ID, &info.StartedAt, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, ErrNoRuns
	}
	if err != nil {
		return RunInfo{}, err
	}
	if err := json.Unmarshal([]byte(snapshot), &info.Config); err != nil {
		return RunInfo{}, fmt.Errorf("decode config for run %s: %w", info.ID, err)
	}
	return info, nil
}

// StoredAnalysis is one archived action record with its provenance.
type StoredAnalysis struct {
	RunID     string
	HandID    string
	Record    analyzer.ActionAnalysis
	CreatedAt time.Time
}

// PutAnalyses stores every action record of a hand analysis under the run,
// replacing earlier records for the same actions.
func (s *Store) PutAnalyses(ctx context.Context, runID string, ha analyzer.HandAnalysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.clock.Now().UTC()
	for _, rec := range ha.Actions {
		record, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode analysis %s/%s: %w", ha.HandID, rec.ActionID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO analyses (run_id, hand_id, action_id, street, verdict,
			 delta, total_ev, record, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, hand_id, action_id) DO UPDATE SET
			 street = excluded.street, verdict = excluded.verdict,
			 delta = excluded.delta, total_ev = excluded.total_ev,
			 record = excluded.record, created_at = excluded.created_at`,
			runID, ha.HandID, rec.ActionID, int(rec.Street), rec.Verdict.String(),
			rec.Delta, rec.TotalEV, string(record), now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AnalysesForHand returns the hand's records from the most recent run that
// analyzed it, in analysis order.
func (s *Store) AnalysesForHand(ctx context.Context, handID string) ([]StoredAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.run_id, a.hand_id, a.record, a.created_at
		 FROM analyses a
		 WHERE a.hand_id = ? AND a.run_id = (
			SELECT a2.run_id FROM analyses a2
			JOIN runs r ON r.id = a2.run_id
			WHERE a2.hand_id = ?
			ORDER BY r.started_at DESC, r.id LIMIT 1
		 )
		 ORDER BY a.rowid`,
		handID, handID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

// AnalysesForRun returns every record stored under the run.
func (s *Store) AnalysesForRun(ctx context.Context, runID string) ([]StoredAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, hand_id, record, created_at
		 FROM analyses WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

func scanAnalyses(rows *sql.Rows) ([]StoredAnalysis, error) {
	var out []StoredAnalysis
	for rows.Next() {
		var sa StoredAnalysis
		var record string
		if err := rows.Scan(&sa.RunID, &sa.HandID, &record, &sa.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(record), &sa.Record); err != nil {
			return nil, fmt.Errorf("decode analysis %s/%s: %w", sa.HandID, sa.RunID, err)
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

// Totals counts the archive's contents.
type Totals struct {
	Hands    int
	Runs     int
	Analyses int
}

// Totals reports row counts across the whole archive.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM hands),
		        (SELECT COUNT(*) FROM runs),
		        (SELECT COUNT(*) FROM analyses)`,
	).Scan(&t.Hands, &t.Runs, &t.Analyses)
	return t, err
}

// VerdictCounts tallies records by verdict. An empty runID tallies every
// run in the archive.
func (s *Store) VerdictCounts(ctx context.Context, runID string) (map[string]int, error) {
	query := `SELECT verdict, COUNT(*) FROM analyses GROUP BY verdict`
	args := []any{}
	if runID != "" {
		query = `SELECT verdict, COUNT(*) FROM analyses WHERE run_id = ? GROUP BY verdict`
		args = append(args, runID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var verdict string
		var n int
		if err := rows.Scan(&verdict, &n); err != nil {
			return nil, err
		}
		counts[verdict] = n
	}
	return counts, rows.Err()
}

// StreetAggregate summarizes the records of one street.
type StreetAggregate struct {
	Street      history.Street
	Actions     int
	MeanDelta   float64
	MeanTotalEV float64
}

// AggregateByStreet averages delta and total EV per street, earliest street
// first. An empty runID aggregates every run in the archive.
func (s *Store) AggregateByStreet(ctx context.Context, runID string) ([]StreetAggregate, error) {
	query := `SELECT street, COUNT(*), AVG(delta), AVG(total_ev)
	          FROM analyses GROUP BY street ORDER BY street`
	args := []any{}
	if runID != "" {
		query = `SELECT street, COUNT(*), AVG(delta), AVG(total_ev)
		         FROM analyses WHERE run_id = ? GROUP BY street ORDER BY street`
		args = append(args, runID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []StreetAggregate
	for rows.Next() {
		var agg StreetAggregate
		var street int
		if err := rows.Scan(&street, &agg.Actions, &agg.MeanDelta, &agg.MeanTotalEV); err != nil {
			return nil, err
		}
		agg.Street = history.Street(street)
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}
