package handler

import (
	"strconv"
	"time"

	"bitslow-market/internal/adapter/http/dto"
	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
	"bitslow-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// mustClientID returns the authenticated client id or writes a 401 and
// reports false. Routes behind JWTAuth always have it; this guards against
// wiring mistakes.
func mustClientID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("client_id")
	if !exists {
		response.Error(c, apperror.ErrInvalidToken())
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return 0, false
	}
	return id, true
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, apperror.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}

// pageQuery parses page/limit query parameters with sane defaults.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

func coinToDTO(coin domain.Coin) dto.CoinResponse {
	return dto.CoinResponse{
		CoinID:      coin.ID,
		OwnerID:     coin.OwnerID,
		OwnerName:   coin.OwnerName,
		Bit1:        coin.Bit1,
		Bit2:        coin.Bit2,
		Bit3:        coin.Bit3,
		Value:       coin.Value,
		Fingerprint: coin.Fingerprint,
		ForSale:     coin.ForSale,
		CreatedAt:   coin.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func coinListToDTO(coins []domain.Coin, p *ports.Pagination) dto.CoinListResponse {
	items := make([]dto.CoinResponse, 0, len(coins))
	for _, coin := range coins {
		items = append(items, coinToDTO(coin))
	}
	return dto.CoinListResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.Limit,
		TotalPages: p.TotalPages,
	}
}

func txnToDTO(txn domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		TransactionID: txn.ID,
		CoinID:        txn.CoinID,
		SellerID:      txn.SellerID,
		SellerName:    txn.SellerName,
		BuyerID:       txn.BuyerID,
		BuyerName:     txn.BuyerName,
		Amount:        txn.Amount,
		Fingerprint:   txn.Fingerprint,
		Date:          txn.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func txnListToDTO(txns []domain.Transaction, p *ports.Pagination) dto.TransactionListResponse {
	items := make([]dto.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		items = append(items, txnToDTO(txn))
	}
	return dto.TransactionListResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.Limit,
		TotalPages: p.TotalPages,
	}
}
