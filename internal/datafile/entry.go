// Package datafile parses canned-reply data files and matches incoming
// queries against the entries they describe.
//
// A data file is a line-oriented script of ENTRY_BEGIN..ENTRY_END blocks.
// Each block carries MATCH predicates, REPLY header settings, ADJUST
// actions, and resource records grouped into the four message sections.
// Entries are matched against queries strictly in file order.
package datafile

import (
	"github.com/miekg/dns"
)

// Transport identifies the delivery channel a query arrived on.
type Transport int

const (
	// TransportAny matches queries from either transport.
	TransportAny Transport = iota
	// TransportUDP matches datagram queries only.
	TransportUDP
	// TransportTCP matches stream queries only.
	TransportTCP
)

// String returns the lowercase transport name.
func (t Transport) String() string {
	switch t {
	case TransportUDP:
		return "udp"
	case TransportTCP:
		return "tcp"
	default:
		return "any"
	}
}

// Entry is one canned match-and-reply rule loaded from a data file.
//
// Each Match* flag arms the corresponding predicate; a disarmed predicate
// is a wildcard. MatchTransport uses TransportAny as its wildcard state.
type Entry struct {
	MatchOpcode    bool      // compare query opcode to the reply's opcode
	MatchQtype     bool      // compare first-question type to the reply's
	MatchQname     bool      // compare first-question name to the reply's
	MatchSerial    bool      // compare SOASerial to the reply's authority SOA
	SOASerial      uint32    // literal from "serial=<value>" in MATCH
	MatchTransport Transport // UDP, TCP, or TransportAny

	// Reply is the pre-built canned response. It is never mutated after
	// parsing; BuildReply clones it per request.
	Reply *dns.Msg

	CopyID bool // overwrite the clone's id with the query's id
}

func newEntry() *Entry {
	return &Entry{
		MatchTransport: TransportAny,
		Reply:          new(dns.Msg),
	}
}

// matches evaluates every armed predicate as a conjunction. Disarmed
// predicates are vacuously true.
func (e *Entry) matches(query *dns.Msg, transport Transport) bool {
	if e.MatchOpcode && query.Opcode != e.Reply.Opcode {
		return false
	}
	if e.MatchQtype && questionType(query) != questionType(e.Reply) {
		return false
	}
	if e.MatchQname {
		qname, ok := questionName(query)
		if !ok {
			return false
		}
		rname, ok := questionName(e.Reply)
		if !ok {
			return false
		}
		if dns.CanonicalName(qname) != dns.CanonicalName(rname) {
			return false
		}
	}
	// The serial predicate inspects the canned reply, not the query: an
	// entry is live only while its own authority SOA carries the serial
	// named in the MATCH line.
	if e.MatchSerial && authoritySerial(e.Reply) != e.SOASerial {
		return false
	}
	if e.MatchTransport != TransportAny && e.MatchTransport != transport {
		return false
	}
	return true
}

// BuildReply deep-clones the canned reply and applies the entry's
// adjustments. The stored reply is left untouched for future requests.
func (e *Entry) BuildReply(query *dns.Msg) *dns.Msg {
	reply := e.Reply.Copy()
	if e.CopyID {
		reply.Id = query.Id
	}
	return reply
}

// EntryList is an ordered sequence of entries. Insertion order is file
// order and is semantically significant: FindMatch returns the first hit.
type EntryList []*Entry

// FindMatch walks the list in file order and returns the first entry whose
// armed predicates all hold, along with its index. Returns (nil, -1) when
// nothing matches.
func (l EntryList) FindMatch(query *dns.Msg, transport Transport) (*Entry, int) {
	for i, e := range l {
		if e.matches(query, transport) {
			return e, i
		}
	}
	return nil, -1
}

// questionType returns the type of the first question, or 0 when the
// message carries no question.
func questionType(m *dns.Msg) uint16 {
	if len(m.Question) == 0 {
		return 0
	}
	return m.Question[0].Qtype
}

// questionName returns the owner name of the first question, if any.
func questionName(m *dns.Msg) (string, bool) {
	if len(m.Question) == 0 {
		return "", false
	}
	return m.Question[0].Name, true
}

// authoritySerial returns the serial of the SOA record leading the
// authority section, or 0 when there is none.
func authoritySerial(m *dns.Msg) uint32 {
	if len(m.Ns) == 0 {
		return 0
	}
	soa, ok := m.Ns[0].(*dns.SOA)
	if !ok {
		return 0
	}
	return soa.Serial
}
