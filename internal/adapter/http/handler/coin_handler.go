package handler

import (
	"time"

	"bitslow-market/internal/adapter/http/dto"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
	"bitslow-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// CoinHandler handles per-coin operations: listing toggle, purchase, history.
type CoinHandler struct {
	ledgerSvc ports.LedgerService
}

// NewCoinHandler creates a new CoinHandler.
func NewCoinHandler(ledgerSvc ports.LedgerService) *CoinHandler {
	return &CoinHandler{ledgerSvc: ledgerSvc}
}

// SetListing handles PATCH /api/v1/coins/:id/listing.
func (h *CoinHandler) SetListing(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	coinID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.ledgerSvc.SetListed(c.Request.Context(), coinID, clientID, *req.Listed); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"coin_id": coinID, "listed": *req.Listed})
}

// Purchase handles POST /api/v1/coins/:id/purchase.
func (h *CoinHandler) Purchase(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	coinID, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.ledgerSvc.Transfer(c.Request.Context(), coinID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PurchaseResponse{
		TransactionID: txn.ID,
		CoinID:        txn.CoinID,
		Amount:        txn.Amount,
		SellerID:      txn.SellerID,
		BuyerID:       txn.BuyerID,
	})
}

// History handles GET /api/v1/coins/:id/history — the ownership chain in
// chronological order.
func (h *CoinHandler) History(c *gin.Context) {
	coinID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.ledgerSvc.GetHistory(c.Request.Context(), coinID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ClientID:   e.ClientID,
			ClientName: e.ClientName,
			Timestamp:  e.RecordedAt.UTC().Format(time.RFC3339),
		})
	}

	response.OK(c, gin.H{"coin_id": coinID, "history": items})
}
