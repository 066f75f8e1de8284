package handler

import (
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles marketplace browsing and minting.
type MarketHandler struct {
	marketSvc ports.MarketService
	ledgerSvc ports.LedgerService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc ports.MarketService, ledgerSvc ports.LedgerService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc, ledgerSvc: ledgerSvc}
}

// List handles GET /api/v1/market — purchasable coins, newest first.
func (h *MarketHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	coins, pagination, err := h.marketSvc.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, coinListToDTO(coins, pagination))
}

// Mint handles POST /api/v1/market/coins — allocates a new coin owned by
// the caller. Responds 409 when the component space is exhausted.
func (h *MarketHandler) Mint(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}

	coin, err := h.ledgerSvc.Mint(c.Request.Context(), &clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, coinToDTO(*coin))
}
