// Package models defines request and response types for the stubns
// admin API. All types are JSON-serializable.
package models

import "time"

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response.
type StatusResponse struct {
	Status string `json:"status"`
}

// ServerStatsResponse contains server runtime statistics.
type ServerStatsResponse struct {
	Uptime        string         `json:"uptime"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     time.Time      `json:"start_time"`
	GoRoutines    int            `json:"goroutines"`
	MemoryAllocMB float64        `json:"memory_alloc_mb"`
	NumCPU        int            `json:"num_cpu"`
	Responder     ResponderStats `json:"responder"`
}

// ResponderStats contains responder query counters.
type ResponderStats struct {
	QueriesTotal uint64 `json:"queries_total"`
	QueriesUDP   uint64 `json:"queries_udp"`
	QueriesTCP   uint64 `json:"queries_tcp"`
	Matched      uint64 `json:"matched"`
	NoMatch      uint64 `json:"no_match"`
	ParseErrors  uint64 `json:"parse_errors"`
}

// EntrySummary describes one loaded entry.
type EntrySummary struct {
	Index       int      `json:"index"`
	Predicates  []string `json:"predicates"`
	Transport   string   `json:"transport"`
	CopyID      bool     `json:"copy_id"`
	Questions   int      `json:"questions"`
	Answers     int      `json:"answers"`
	Authorities int      `json:"authorities"`
	Additionals int      `json:"additionals"`
}

// EntryListResponse lists the loaded entries in file order.
type EntryListResponse struct {
	Datafile string         `json:"datafile"`
	Entries  []EntrySummary `json:"entries"`
	Count    int            `json:"count"`
	Dangling bool           `json:"dangling"`
}

// QueryRecord is one logged query.
type QueryRecord struct {
	Seq           uint64    `json:"seq"`
	TxnID         uint16    `json:"txn_id"`
	Transport     string    `json:"transport"`
	Source        string    `json:"source"`
	Qname         string    `json:"qname"`
	Qtype         uint16    `json:"qtype"`
	MatchedEntry  int       `json:"matched_entry"`
	RequestBytes  int       `json:"request_bytes"`
	ResponseBytes int       `json:"response_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}

// QueryListResponse lists recent logged queries, newest first.
type QueryListResponse struct {
	Queries []QueryRecord `json:"queries"`
	Count   int           `json:"count"`
	Total   int64         `json:"total"`
}
