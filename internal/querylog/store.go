// Package querylog provides SQLite-backed persistence of received
// queries.
//
// Every query the responder sees, matched or not, is recorded so that
// test harnesses can assert on exactly what reached the server. The log
// is append-only during a run; Recent and Count serve the admin API.
package querylog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a SQLite database holding the query log.
type Store struct {
	conn *sql.DB
	mu   sync.Mutex
}

// Row is one logged query.
type Row struct {
	ID            int64
	Seq           uint64
	TxnID         uint16
	Transport     string
	Source        string
	Qname         string
	Qtype         uint16
	MatchedEntry  int // entry index that answered, or -1
	RequestBytes  int
	ResponseBytes int
	CreatedAt     time.Time
}

// Open opens or creates the query log database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize query log schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record appends one query to the log.
func (s *Store) Record(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO queries
			(seq, txn_id, transport, source, qname, qtype,
			 matched_entry, request_bytes, response_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.Exec(query,
		row.Seq, row.TxnID, row.Transport, row.Source, row.Qname, row.Qtype,
		row.MatchedEntry, row.RequestBytes, row.ResponseBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// Recent returns the most recent rows, newest first.
func (s *Store) Recent(limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, seq, txn_id, transport, source, qname, qtype,
		       matched_entry, request_bytes, response_bytes, created_at
		FROM queries
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query log: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		err := rows.Scan(&r.ID, &r.Seq, &r.TxnID, &r.Transport, &r.Source,
			&r.Qname, &r.Qtype, &r.MatchedEntry, &r.RequestBytes,
			&r.ResponseBytes, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the total number of logged queries.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.conn.QueryRow("SELECT COUNT(*) FROM queries").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count queries: %w", err)
	}
	return n, nil
}
