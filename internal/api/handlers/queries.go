package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/stubns/internal/api/models"
)

// ListQueries returns recent logged queries, newest first. The optional
// ?limit=N parameter caps the result (default 50).
func (h *Handler) ListQueries(c *gin.Context) {
	if h.queries == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "query log disabled"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	rows, err := h.queries.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	total, err := h.queries.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]models.QueryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.QueryRecord{
			Seq:           r.Seq,
			TxnID:         r.TxnID,
			Transport:     r.Transport,
			Source:        r.Source,
			Qname:         r.Qname,
			Qtype:         r.Qtype,
			MatchedEntry:  r.MatchedEntry,
			RequestBytes:  r.RequestBytes,
			ResponseBytes: r.ResponseBytes,
			CreatedAt:     r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, models.QueryListResponse{
		Queries: out,
		Count:   len(out),
		Total:   total,
	})
}
