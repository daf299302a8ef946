package datafile

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchLine(t *testing.T) {
	t.Run("all predicates", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseMatchLine("opcode qtype qname UDP serial=1337", e))
		assert.True(t, e.MatchOpcode)
		assert.True(t, e.MatchQtype)
		assert.True(t, e.MatchQname)
		assert.Equal(t, TransportUDP, e.MatchTransport)
		assert.True(t, e.MatchSerial)
		assert.Equal(t, uint32(1337), e.SOASerial)
	})

	t.Run("serial with colon", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseMatchLine("serial:42", e))
		assert.True(t, e.MatchSerial)
		assert.Equal(t, uint32(42), e.SOASerial)
	})

	t.Run("tcp transport", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseMatchLine("TCP", e))
		assert.Equal(t, TransportTCP, e.MatchTransport)
	})

	t.Run("trailing comment ignored", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseMatchLine("qname ; only the name matters", e))
		assert.True(t, e.MatchQname)
		assert.False(t, e.MatchQtype)
	})

	errorCases := []struct {
		name string
		line string
	}{
		{"unknown keyword", "qclass"},
		{"serial missing separator", "serial 10"},
		{"serial missing value", "serial="},
		{"serial not a number", "serial=abc"},
		{"serial overflow", "serial=99999999999"},
		{"lowercase transport", "udp"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, parseMatchLine(tt.line, newEntry()))
		})
	}
}

func TestParseReplyLine(t *testing.T) {
	t.Run("opcode rcode and flags", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseReplyLine("NOTIFY NXDOMAIN QR AA RD RA", e))
		assert.Equal(t, dns.OpcodeNotify, e.Reply.Opcode)
		assert.Equal(t, dns.RcodeNameError, e.Reply.Rcode)
		assert.True(t, e.Reply.Response)
		assert.True(t, e.Reply.Authoritative)
		assert.True(t, e.Reply.RecursionDesired)
		assert.True(t, e.Reply.RecursionAvailable)
		assert.False(t, e.Reply.Truncated)
	})

	t.Run("every rcode", func(t *testing.T) {
		rcodes := map[string]int{
			"NOERROR":  dns.RcodeSuccess,
			"FORMERR":  dns.RcodeFormatError,
			"SERVFAIL": dns.RcodeServerFailure,
			"NXDOMAIN": dns.RcodeNameError,
			"NOTIMPL":  dns.RcodeNotImplemented,
			"YXDOMAIN": dns.RcodeYXDomain,
			"YXRRSET":  dns.RcodeYXRrset,
			"NXRRSET":  dns.RcodeNXRrset,
			"NOTAUTH":  dns.RcodeNotAuth,
			"NOTZONE":  dns.RcodeNotZone,
		}
		for word, want := range rcodes {
			e := newEntry()
			require.NoError(t, parseReplyLine(word, e))
			assert.Equal(t, want, e.Reply.Rcode, word)
		}
	})

	t.Run("security flags", func(t *testing.T) {
		e := newEntry()
		require.NoError(t, parseReplyLine("AD CD TC", e))
		assert.True(t, e.Reply.AuthenticatedData)
		assert.True(t, e.Reply.CheckingDisabled)
		assert.True(t, e.Reply.Truncated)
	})

	t.Run("unknown word is fatal", func(t *testing.T) {
		assert.Error(t, parseReplyLine("QR BOGUS", newEntry()))
	})
}

func TestParseAdjustLine(t *testing.T) {
	e := newEntry()
	require.NoError(t, parseAdjustLine("copy_id", e))
	assert.True(t, e.CopyID)

	assert.Error(t, parseAdjustLine("copy_query", newEntry()))
}

func TestParseSectionLine(t *testing.T) {
	tests := []struct {
		line string
		want section
	}{
		{"QUESTION", sectionQuestion},
		{"ANSWER", sectionAnswer},
		{"AUTHORITY", sectionAuthority},
		{"ADDITIONAL", sectionAdditional},
	}
	for _, tt := range tests {
		st := &parseState{}
		require.NoError(t, parseSectionLine(tt.line, st))
		assert.Equal(t, tt.want, st.section, tt.line)
	}

	assert.Error(t, parseSectionLine("EXTRA", &parseState{}))
}

func TestConsumeUint32(t *testing.T) {
	rest, v, err := consumeUint32("4096 trailing")
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), v)
	assert.Equal(t, "trailing", rest)

	_, _, err = consumeUint32("x4096")
	assert.Error(t, err)

	_, _, err = consumeUint32("4294967296") // one past MaxUint32
	assert.Error(t, err)
}
