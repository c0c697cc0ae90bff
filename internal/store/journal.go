package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"projboard/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Journal records store changes as an append-only SQLite event log.
//
// It is an audit trail only: nothing reads it back into a Store, so a board
// always starts empty.
type Journal struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time

	seq  int64
	seen map[string]model.Status
	err  error
}

type statusChange struct {
	From model.Status `json:"from"`
	To   model.Status `json:"to"`
}

// OpenJournal opens (or creates) the journal at path. An empty path keeps the
// journal in memory for the life of the process.
func OpenJournal(ctx context.Context, path string, log zerolog.Logger) (*Journal, error) {
	path = strings.TrimSpace(path)
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout=5000;"}
	if path != "" {
		pragmas = append(pragmas,
			"PRAGMA journal_mode=WAL;",
			"PRAGMA synchronous=NORMAL;",
		)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}
	if err := migrateJournal(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	j := &Journal{
		db:   db,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
		seen: map[string]model.Status{},
	}
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&j.seq); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func migrateJournal(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_seq ON events(seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, seq);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Attach subscribes the journal to s. Projects already in s are treated as
// known and are not journaled.
func (j *Journal) Attach(s *Store) {
	for _, p := range s.Snapshot() {
		j.seen[p.ID] = p.Status
	}
	s.Subscribe(j.observe)
}

func (j *Journal) observe(projects []model.Project) {
	ctx := context.Background()
	for _, p := range projects {
		prev, known := j.seen[p.ID]
		switch {
		case !known:
			j.record(ctx, model.EventProjectCreate, p.ID, p)
		case prev != p.Status:
			j.record(ctx, model.EventProjectStatus, p.ID, statusChange{From: prev, To: p.Status})
		}
		j.seen[p.ID] = p.Status
	}
}

func (j *Journal) record(ctx context.Context, typ, entityID string, payload any) {
	if err := j.append(ctx, typ, entityID, payload); err != nil {
		// Listeners cannot fail the broadcast; keep the first error for Err.
		if j.err == nil {
			j.err = err
		}
		j.log.Error().Err(err).Str("type", typ).Str("entity", entityID).Msg("journal append failed")
	}
}

func (j *Journal) append(ctx context.Context, typ, entityID string, payload any) error {
	pb, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	seq := j.seq + 1
	if _, err := j.db.ExecContext(ctx, `INSERT INTO events(event_id, seq, type, entity_id, payload_json, issued_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		"evt-"+uuid.NewString(), seq, typ, entityID, string(pb), j.now().UnixMilli()); err != nil {
		return err
	}
	j.seq = seq
	return nil
}

// Err returns the first append failure, if any.
func (j *Journal) Err() error { return j.err }

// Tail returns the last limit events in chronological order. limit <= 0
// returns everything.
func (j *Journal) Tail(ctx context.Context, limit int) ([]model.Event, error) {
	q := `SELECT event_id, issued_at_unixms, type, entity_id, payload_json FROM events ORDER BY seq DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = j.db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = j.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	out, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// ForEntity returns every event recorded for one project, oldest first.
func (j *Journal) ForEntity(ctx context.Context, entityID string) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	rows, err := j.db.QueryContext(ctx, `SELECT event_id, issued_at_unixms, type, entity_id, payload_json
		FROM events
		WHERE entity_id = ?
		ORDER BY seq ASC`, entityID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()
	out := []model.Event{}
	for rows.Next() {
		var id, typ, entityID, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &tsMs, &typ, &entityID, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
