package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// section identifies which part of the canned reply a record line
// appends to.
type section int

const (
	sectionQuestion section = iota
	sectionAnswer
	sectionAuthority
	sectionAdditional
)

// ParseError is a fatal data-file error carrying its location.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// File is the result of parsing one data file.
type File struct {
	Path    string
	Entries EntryList

	// Completed counts entries closed with ENTRY_END. When Dangling is
	// true the final entry of Entries was still open at end of file; it
	// is kept, and callers should log the omission.
	Completed int
	Dangling  bool
}

// parseState is the file-scoped parser context threaded through the pass.
// Origin and default TTL are deliberately not reset between entries.
type parseState struct {
	file       string
	line       int
	origin     string // current $ORIGIN as a fully qualified name, or ""
	defaultTTL uint32
	section    section
	prevName   string // previous record owner, for name elision
	indented   bool   // current line began with whitespace
}

func (st *parseState) errorf(format string, args ...any) error {
	return &ParseError{File: st.file, Line: st.line, Err: fmt.Errorf(format, args...)}
}

func (st *parseState) wrap(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{File: st.file, Line: st.line, Err: err}
}

// LoadFile reads and parses the data file at path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse runs a single forward pass over r, producing the ordered entry
// list. Any grammar violation aborts with a *ParseError naming the line.
func Parse(r io.Reader, file string) (*File, error) {
	st := &parseState{file: file, section: sectionQuestion}
	out := &File{Path: file}

	var current *Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		st.line++
		raw := scanner.Text()
		st.indented = len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t')
		s := strings.TrimLeft(raw, " \t")
		if atEnd(s) {
			continue
		}

		switch {
		case consumeKeyword(&s, "ENTRY_BEGIN"):
			if current != nil {
				return nil, st.errorf("previous entry does not ENTRY_END")
			}
			current = newEntry()
			st.section = sectionQuestion
			out.Entries = append(out.Entries, current)
			continue
		case consumeKeyword(&s, "$ORIGIN"):
			if err := st.setOrigin(s); err != nil {
				return nil, st.wrap(err)
			}
			continue
		case consumeKeyword(&s, "$TTL"):
			if err := st.setDefaultTTL(s); err != nil {
				return nil, st.wrap(err)
			}
			continue
		}

		if current == nil {
			return nil, st.errorf("expected ENTRY_BEGIN but got %q", s)
		}

		var err error
		switch {
		case consumeKeyword(&s, "MATCH"):
			err = parseMatchLine(s, current)
		case consumeKeyword(&s, "REPLY"):
			err = parseReplyLine(s, current)
		case consumeKeyword(&s, "ADJUST"):
			err = parseAdjustLine(s, current)
		case consumeKeyword(&s, "SECTION"):
			err = parseSectionLine(s, st)
		case consumeKeyword(&s, "ENTRY_END"):
			current = nil
			out.Completed++
		default:
			err = st.addRecord(current, s)
		}
		if err != nil {
			return nil, st.wrap(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read data file %s: %w", file, err)
	}

	// Missing ENTRY_END at end of file: the dangling entry is kept.
	out.Dangling = current != nil
	return out, nil
}

// setOrigin replaces the parse-state origin with the domain name at the
// start of s.
func (st *parseState) setOrigin(s string) error {
	name := contentToken(s)
	if name == "" {
		return errors.New("missing domain name in $ORIGIN")
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return fmt.Errorf("bad domain name in $ORIGIN: %q", name)
	}
	st.origin = dns.Fqdn(name)
	return nil
}

// setDefaultTTL replaces the parse-state default TTL with the unsigned
// decimal at the start of s.
func (st *parseState) setDefaultTTL(s string) error {
	tok := contentToken(s)
	if tok == "" {
		return errors.New("missing value in $TTL")
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return fmt.Errorf("bad value in $TTL: %q", tok)
	}
	st.defaultTTL = uint32(v)
	return nil
}

// addRecord decodes one record specification and appends it to the target
// section of the open entry's canned reply.
func (st *parseState) addRecord(e *Entry, line string) error {
	if st.section == sectionQuestion {
		return st.addQuestion(e, line)
	}

	fields := strings.Fields(line)
	if len(fields) > 0 && st.ownerElided(fields[0]) {
		if st.prevName == "" {
			return fmt.Errorf("owner name omitted with no previous record: %q", line)
		}
		line = st.prevName + " " + line
	}

	zp := dns.NewZoneParser(strings.NewReader(line), st.origin, st.file)
	zp.SetDefaultTTL(st.defaultTTL)
	rr, ok := zp.Next()
	if !ok {
		if err := zp.Err(); err != nil {
			return err
		}
		return fmt.Errorf("no record in %q", line)
	}
	st.prevName = rr.Header().Name

	switch st.section {
	case sectionAnswer:
		e.Reply.Answer = append(e.Reply.Answer, rr)
	case sectionAuthority:
		e.Reply.Ns = append(e.Reply.Ns, rr)
	case sectionAdditional:
		e.Reply.Extra = append(e.Reply.Extra, rr)
	}
	return nil
}

// addQuestion decodes a question-section line: owner name, optional
// class, and record type, with no rdata.
func (st *parseState) addQuestion(e *Entry, line string) error {
	if i := strings.IndexAny(line, ";#"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty question specification")
	}

	owner := fields[0]
	rest := fields[1:]
	if st.ownerElided(owner) {
		if st.prevName == "" {
			return fmt.Errorf("owner name omitted with no previous record: %q", line)
		}
		owner = st.prevName
		rest = fields
	}
	name, err := st.qualify(owner)
	if err != nil {
		return err
	}

	qclass := uint16(dns.ClassINET)
	qtype := uint16(0)
	for _, f := range rest {
		upper := strings.ToUpper(f)
		if c, ok := dns.StringToClass[upper]; ok {
			qclass = c
			continue
		}
		if t, ok := dns.StringToType[upper]; ok {
			qtype = t
			continue
		}
		return fmt.Errorf("bad token %q in question %q", f, line)
	}
	if qtype == 0 {
		return fmt.Errorf("missing record type in question %q", line)
	}

	e.Reply.Question = append(e.Reply.Question, dns.Question{
		Name:   name,
		Qtype:  qtype,
		Qclass: qclass,
	})
	st.prevName = name
	return nil
}

// qualify resolves a possibly relative owner name against the current
// origin.
func (st *parseState) qualify(name string) (string, error) {
	if name == "@" {
		if st.origin == "" {
			return "", errors.New("@ used without $ORIGIN")
		}
		return st.origin, nil
	}
	if !dns.IsFqdn(name) {
		if st.origin == "" {
			return "", fmt.Errorf("relative name %q without $ORIGIN", name)
		}
		if st.origin == "." {
			name += "."
		} else {
			name = name + "." + st.origin
		}
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", fmt.Errorf("bad domain name %q", name)
	}
	return name, nil
}

var ttlPattern = regexp.MustCompile(`^(?:\d+[wdhmsWDHMS]?)+$`)

// ownerElided reports whether the first token of a record line is not an
// owner name but a TTL, class, or type, meaning the previous record's
// owner carries over.
//
// Elision is positional: only a line that began with whitespace can omit
// its owner, so a column-0 owner such as "a" or "mx" is never mistaken
// for a type mnemonic. The token check then disambiguates indented lines
// that still carry an explicit owner.
func (st *parseState) ownerElided(tok string) bool {
	if !st.indented {
		return false
	}
	upper := strings.ToUpper(tok)
	if _, ok := dns.StringToClass[upper]; ok {
		return true
	}
	if _, ok := dns.StringToType[upper]; ok {
		return true
	}
	return ttlPattern.MatchString(tok)
}

// contentToken returns the leading run of s up to whitespace or end of
// content.
func contentToken(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || isEndOfContent(s[i]) {
			return s[:i]
		}
	}
	return s
}
