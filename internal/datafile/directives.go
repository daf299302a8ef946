package datafile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// parseMatchLine interprets the remainder of a MATCH line. Keywords may
// appear in any order and any subset; each one arms a predicate on e.
func parseMatchLine(line string, e *Entry) error {
	s := line
	for !atEnd(s) {
		switch {
		case consumeKeyword(&s, "opcode"):
			e.MatchOpcode = true
		case consumeKeyword(&s, "qtype"):
			e.MatchQtype = true
		case consumeKeyword(&s, "qname"):
			e.MatchQname = true
		case consumeKeyword(&s, "UDP"):
			e.MatchTransport = TransportUDP
		case consumeKeyword(&s, "TCP"):
			e.MatchTransport = TransportTCP
		case consumeKeyword(&s, "serial"):
			if s == "" || (s[0] != '=' && s[0] != ':') {
				return fmt.Errorf("expected = or : in MATCH: %s", line)
			}
			s = strings.TrimLeft(s[1:], " \t")
			rest, serial, err := consumeUint32(s)
			if err != nil {
				return fmt.Errorf("bad serial in MATCH: %s", line)
			}
			e.MatchSerial = true
			e.SOASerial = serial
			s = rest
		default:
			return fmt.Errorf("could not parse MATCH: %q", s)
		}
	}
	return nil
}

// replyKeywords maps the REPLY vocabulary to header setters on the canned
// reply. Tried in order; the first textual match wins, like every other
// keyword in the grammar.
var replyKeywords = []struct {
	keyword string
	apply   func(*dns.Msg)
}{
	// opcodes
	{"QUERY", func(m *dns.Msg) { m.Opcode = dns.OpcodeQuery }},
	{"IQUERY", func(m *dns.Msg) { m.Opcode = dns.OpcodeIQuery }},
	{"STATUS", func(m *dns.Msg) { m.Opcode = dns.OpcodeStatus }},
	{"NOTIFY", func(m *dns.Msg) { m.Opcode = dns.OpcodeNotify }},
	{"UPDATE", func(m *dns.Msg) { m.Opcode = dns.OpcodeUpdate }},
	// rcodes
	{"NOERROR", func(m *dns.Msg) { m.Rcode = dns.RcodeSuccess }},
	{"FORMERR", func(m *dns.Msg) { m.Rcode = dns.RcodeFormatError }},
	{"SERVFAIL", func(m *dns.Msg) { m.Rcode = dns.RcodeServerFailure }},
	{"NXDOMAIN", func(m *dns.Msg) { m.Rcode = dns.RcodeNameError }},
	{"NOTIMPL", func(m *dns.Msg) { m.Rcode = dns.RcodeNotImplemented }},
	{"YXDOMAIN", func(m *dns.Msg) { m.Rcode = dns.RcodeYXDomain }},
	{"YXRRSET", func(m *dns.Msg) { m.Rcode = dns.RcodeYXRrset }},
	{"NXRRSET", func(m *dns.Msg) { m.Rcode = dns.RcodeNXRrset }},
	{"NOTAUTH", func(m *dns.Msg) { m.Rcode = dns.RcodeNotAuth }},
	{"NOTZONE", func(m *dns.Msg) { m.Rcode = dns.RcodeNotZone }},
	// flags
	{"QR", func(m *dns.Msg) { m.Response = true }},
	{"AA", func(m *dns.Msg) { m.Authoritative = true }},
	{"TC", func(m *dns.Msg) { m.Truncated = true }},
	{"RD", func(m *dns.Msg) { m.RecursionDesired = true }},
	{"CD", func(m *dns.Msg) { m.CheckingDisabled = true }},
	{"RA", func(m *dns.Msg) { m.RecursionAvailable = true }},
	{"AD", func(m *dns.Msg) { m.AuthenticatedData = true }},
}

// parseReplyLine interprets the remainder of a REPLY line: opcode names,
// rcode names, and flag names, applied to the canned reply header.
func parseReplyLine(line string, e *Entry) error {
	s := line
	for !atEnd(s) {
		matched := false
		for _, rk := range replyKeywords {
			if consumeKeyword(&s, rk.keyword) {
				rk.apply(e.Reply)
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("could not parse REPLY: %q", s)
		}
	}
	return nil
}

// parseAdjustLine interprets the remainder of an ADJUST line.
func parseAdjustLine(line string, e *Entry) error {
	s := line
	for !atEnd(s) {
		if consumeKeyword(&s, "copy_id") {
			e.CopyID = true
			continue
		}
		return fmt.Errorf("could not parse ADJUST: %q", s)
	}
	return nil
}

// parseSectionLine interprets the remainder of a SECTION line, switching
// the parser's target section for subsequent record lines.
func parseSectionLine(line string, st *parseState) error {
	s := line
	switch {
	case consumeKeyword(&s, "QUESTION"):
		st.section = sectionQuestion
	case consumeKeyword(&s, "ANSWER"):
		st.section = sectionAnswer
	case consumeKeyword(&s, "AUTHORITY"):
		st.section = sectionAuthority
	case consumeKeyword(&s, "ADDITIONAL"):
		st.section = sectionAdditional
	default:
		return fmt.Errorf("bad section %q", line)
	}
	return nil
}

// consumeUint32 parses a leading unsigned decimal literal and returns the
// remaining input with trailing whitespace skipped.
func consumeUint32(s string) (rest string, v uint32, err error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return s, 0, fmt.Errorf("expected unsigned integer at %q", s)
	}
	u, err := strconv.ParseUint(s[:i], 10, 32)
	if err != nil {
		return s, 0, err
	}
	return strings.TrimLeft(s[i:], " \t"), uint32(u), nil
}
