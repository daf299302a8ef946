package datafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsumeKeyword(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		keyword  string
		want     bool
		wantRest string
	}{
		{"exact match", "MATCH", "MATCH", true, ""},
		{"match with trailing args", "MATCH qname qtype", "MATCH", true, "qname qtype"},
		{"tabs after keyword", "REPLY\t\tQR AA", "REPLY", true, "QR AA"},
		{"no match", "REPLY QR", "MATCH", false, "REPLY QR"},
		{"prefix only counts", "qtypeX rest", "qtype", true, "X rest"},
		{"case sensitive", "match qname", "MATCH", false, "match qname"},
		{"empty input", "", "MATCH", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.input
			got := consumeKeyword(&s, tt.keyword)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRest, s)
		})
	}
}

func TestAtEnd(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", true},
		{"semicolon comment", "; a comment", true},
		{"hash comment", "# a comment", true},
		{"newline", "\n", true},
		{"content", "qname", false},
		{"content with trailing comment", "qname ; note", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, atEnd(tt.input))
		})
	}
}

func TestContentToken(t *testing.T) {
	assert.Equal(t, "example.com.", contentToken("example.com. extra"))
	assert.Equal(t, "example.com.", contentToken("example.com.;comment"))
	assert.Equal(t, "3600", contentToken("3600"))
	assert.Equal(t, "", contentToken("; only comment"))
}
