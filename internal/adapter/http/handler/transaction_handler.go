package handler

import (
	"strconv"
	"time"

	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
	"bitslow-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves the global transaction feed.
type TransactionHandler struct {
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{reportingSvc: reportingSvc}
}

// List handles GET /api/v1/transactions with optional filters:
// buyer, seller (name substring), min_value, max_value, from, to (dates),
// sort_by (date|amount|coin|buyer|seller), order (asc|desc), page, limit.
func (h *TransactionHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	params := ports.TransactionListParams{
		BuyerName:  c.Query("buyer"),
		SellerName: c.Query("seller"),
		SortBy:     c.DefaultQuery("sort_by", "date"),
		SortDesc:   c.DefaultQuery("order", "desc") != "asc",
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	if v := c.Query("min_value"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid min_value"))
			return
		}
		params.MinValue = &n
	}
	if v := c.Query("max_value"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid max_value"))
			return
		}
		params.MaxValue = &n
	}
	if v := c.Query("from"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			response.Error(c, apperror.Validation("invalid from date"))
			return
		}
		params.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			response.Error(c, apperror.Validation("invalid to date"))
			return
		}
		// Date-only bounds are inclusive of the named day.
		if len(v) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		params.To = &t
	}

	txns, pagination, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, txnListToDTO(txns, pagination))
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
