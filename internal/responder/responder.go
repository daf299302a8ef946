// Package responder turns inbound query bytes into canned answer bytes.
//
// It owns the per-request pipeline: decode the query, find the first
// matching entry, clone and adjust the canned reply, and encode it. The
// entry list is read-only after load, so a single Responder is safe for
// concurrent use from both transports.
package responder

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/miekg/dns"

	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/querylog"
)

// Responder answers queries from a fixed entry list.
type Responder struct {
	Logger  *slog.Logger       // optional
	Entries datafile.EntryList // read-only after load
	Stats   *Stats             // optional counters
	Queries *querylog.Store    // optional persistent query log

	seq atomic.Uint64
}

// Result is the outcome of handling one request.
type Result struct {
	// ResponseBytes is the encoded answer, or empty when the request was
	// dropped (undecodable, unmatched, or unencodable).
	ResponseBytes []byte

	// MatchedEntry is the zero-based index of the entry that fired, or -1.
	MatchedEntry int
}

// Handle runs the decode, match, build, encode pipeline for one request.
// Dropped requests are logged and yield an empty response; the caller
// sends nothing in that case.
func (r *Responder) Handle(ctx context.Context, transport datafile.Transport, src string, payload []byte) Result {
	seq := r.seq.Add(1)
	r.recordQuery(transport)

	query := new(dns.Msg)
	if err := query.Unpack(payload); err != nil {
		r.recordParseError()
		r.log().WarnContext(ctx, "bad packet",
			"seq", seq,
			"transport", transport.String(),
			"src", src,
			"err", err,
		)
		return Result{MatchedEntry: -1}
	}

	qname, qtype := questionInfo(query)
	r.log().InfoContext(ctx, "query",
		"seq", seq,
		"id", query.Id,
		"transport", transport.String(),
		"src", src,
		"bytes", len(payload),
		"qname", qname,
		"qtype", qtype,
	)

	match, idx := r.Entries.FindMatch(query, transport)
	if match == nil {
		r.recordNoMatch()
		r.log().InfoContext(ctx, "no matching entry", "seq", seq, "qname", qname)
		r.logQuery(seq, query, transport, src, -1, len(payload), 0)
		return Result{MatchedEntry: -1}
	}

	reply := match.BuildReply(query)
	out, err := reply.Pack()
	if err != nil {
		r.recordParseError()
		r.log().WarnContext(ctx, "could not encode answer", "seq", seq, "entry", idx, "err", err)
		return Result{MatchedEntry: idx}
	}
	r.recordMatch()
	r.log().InfoContext(ctx, "answer", "seq", seq, "entry", idx, "bytes", len(out))
	r.logQuery(seq, query, transport, src, idx, len(payload), len(out))
	return Result{ResponseBytes: out, MatchedEntry: idx}
}

func (r *Responder) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Responder) logQuery(seq uint64, query *dns.Msg, transport datafile.Transport, src string, matched, reqBytes, respBytes int) {
	if r.Queries == nil {
		return
	}
	qname, qtype := questionInfo(query)
	err := r.Queries.Record(querylog.Row{
		Seq:           seq,
		TxnID:         query.Id,
		Transport:     transport.String(),
		Source:        src,
		Qname:         qname,
		Qtype:         qtype,
		MatchedEntry:  matched,
		RequestBytes:  reqBytes,
		ResponseBytes: respBytes,
	})
	if err != nil {
		r.log().Warn("could not record query", "seq", seq, "err", err)
	}
}

func (r *Responder) recordQuery(transport datafile.Transport) {
	if r.Stats != nil {
		r.Stats.RecordQuery(transport)
	}
}

func (r *Responder) recordMatch() {
	if r.Stats != nil {
		r.Stats.RecordMatch()
	}
}

func (r *Responder) recordNoMatch() {
	if r.Stats != nil {
		r.Stats.RecordNoMatch()
	}
}

func (r *Responder) recordParseError() {
	if r.Stats != nil {
		r.Stats.RecordParseError()
	}
}

// questionInfo extracts the first question's name and type for logging.
func questionInfo(m *dns.Msg) (qname string, qtype uint16) {
	if len(m.Question) == 0 {
		return "<no-question>", 0
	}
	return m.Question[0].Name, m.Question[0].Qtype
}
