package responder

import (
	"sync/atomic"

	"github.com/jroosing/stubns/internal/datafile"
)

// Stats collects responder counters.
// All methods are safe for concurrent use.
type Stats struct {
	queriesTotal atomic.Uint64
	queriesUDP   atomic.Uint64
	queriesTCP   atomic.Uint64
	matched      atomic.Uint64
	noMatch      atomic.Uint64
	parseErrors  atomic.Uint64
}

// NewStats creates a new statistics collector.
func NewStats() *Stats {
	return &Stats{}
}

// RecordQuery records a received query for the given transport.
func (s *Stats) RecordQuery(transport datafile.Transport) {
	s.queriesTotal.Add(1)
	switch transport {
	case datafile.TransportUDP:
		s.queriesUDP.Add(1)
	case datafile.TransportTCP:
		s.queriesTCP.Add(1)
	}
}

// RecordMatch records a query answered by an entry.
func (s *Stats) RecordMatch() {
	s.matched.Add(1)
}

// RecordNoMatch records a query that matched no entry and was dropped.
func (s *Stats) RecordNoMatch() {
	s.noMatch.Add(1)
}

// RecordParseError records a request that could not be decoded, or an
// answer that could not be encoded.
func (s *Stats) RecordParseError() {
	s.parseErrors.Add(1)
}

// Snapshot is a point-in-time view of responder statistics.
type Snapshot struct {
	QueriesTotal uint64
	QueriesUDP   uint64
	QueriesTCP   uint64
	Matched      uint64
	NoMatch      uint64
	ParseErrors  uint64
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		QueriesTotal: s.queriesTotal.Load(),
		QueriesUDP:   s.queriesUDP.Load(),
		QueriesTCP:   s.queriesTCP.Load(),
		Matched:      s.matched.Load(),
		NoMatch:      s.noMatch.Load(),
		ParseErrors:  s.parseErrors.Load(),
	}
}
