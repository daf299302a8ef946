package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/stubns/internal/api/models"
	"github.com/jroosing/stubns/internal/datafile"
)

// ListEntries returns summaries of the loaded entries in file order.
func (h *Handler) ListEntries(c *gin.Context) {
	entries := make([]models.EntrySummary, 0, len(h.file.Entries))
	for i, e := range h.file.Entries {
		entries = append(entries, models.EntrySummary{
			Index:       i,
			Predicates:  predicateNames(e),
			Transport:   e.MatchTransport.String(),
			CopyID:      e.CopyID,
			Questions:   len(e.Reply.Question),
			Answers:     len(e.Reply.Answer),
			Authorities: len(e.Reply.Ns),
			Additionals: len(e.Reply.Extra),
		})
	}

	c.JSON(http.StatusOK, models.EntryListResponse{
		Datafile: h.file.Path,
		Entries:  entries,
		Count:    len(entries),
		Dangling: h.file.Dangling,
	})
}

func predicateNames(e *datafile.Entry) []string {
	out := make([]string, 0, 4)
	if e.MatchOpcode {
		out = append(out, "opcode")
	}
	if e.MatchQtype {
		out = append(out, "qtype")
	}
	if e.MatchQname {
		out = append(out, "qname")
	}
	if e.MatchSerial {
		out = append(out, fmt.Sprintf("serial=%d", e.SOASerial))
	}
	return out
}
