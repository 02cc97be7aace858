package httpcache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one cached response.
type Record struct {
	Key       string
	Status    int
	Header    http.Header
	Body      []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Live    int
	Expired int
	Bytes   int64 // database and write-ahead log size
}

// Store is a SQLite-backed response store keyed by request.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			status     INTEGER NOT NULL,
			header     TEXT NOT NULL DEFAULT '{}',
			body       BLOB NOT NULL,
			stored_at  INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_responses_expires ON responses(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the record for key if present and not expired.
func (s *Store) Get(key string) (Record, bool, error) {
	var (
		rec       Record
		header    string
		storedAt  int64
		expiresAt int64
	)
	err := s.db.QueryRow(
		`SELECT key, status, header, body, stored_at, expires_at FROM responses WHERE key = ? AND expires_at > ?`,
		key, s.now().UnixNano(),
	).Scan(&rec.Key, &rec.Status, &header, &rec.Body, &storedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading cached response: %w", err)
	}
	if err := json.Unmarshal([]byte(header), &rec.Header); err != nil {
		return Record{}, false, fmt.Errorf("decoding cached header: %w", err)
	}
	rec.StoredAt = time.Unix(0, storedAt)
	rec.ExpiresAt = time.Unix(0, expiresAt)
	return rec, true, nil
}

// Set inserts or replaces the record for rec.Key.
func (s *Store) Set(rec Record) error {
	header, err := json.Marshal(rec.Header)
	if err != nil {
		return err
	}
	if rec.StoredAt.IsZero() {
		rec.StoredAt = s.now()
	}
	body := rec.Body
	if body == nil {
		body = []byte{}
	}
	_, err = s.db.Exec(`
		INSERT INTO responses (key, status, header, body, stored_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`, rec.Key, rec.Status, string(header), body, rec.StoredAt.UnixNano(), rec.ExpiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("storing response %s: %w", rec.Key, err)
	}
	return nil
}

// Delete removes the record for key.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
	return err
}

// Prune deletes expired records and returns how many were removed.
func (s *Store) Prune() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM responses WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning responses: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every record.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("clearing responses: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts live and expired records.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	now := s.now().UnixNano()
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM responses
	`, now, now).Scan(&st.Live, &st.Expired)
	if err != nil {
		return Stats{}, fmt.Errorf("counting responses: %w", err)
	}
	for _, p := range []string{s.path, s.path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			st.Bytes += info.Size()
		}
	}
	return st, nil
}
