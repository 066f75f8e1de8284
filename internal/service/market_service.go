package service

import (
	"context"
	"fmt"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MarketServiceImpl implements ports.MarketService.
type MarketServiceImpl struct {
	coinRepo ports.CoinRepository
}

// NewMarketService creates a new MarketServiceImpl.
func NewMarketService(coinRepo ports.CoinRepository) *MarketServiceImpl {
	return &MarketServiceImpl{coinRepo: coinRepo}
}

// List returns purchasable coins, newest first.
func (s *MarketServiceImpl) List(ctx context.Context, page, limit int) ([]domain.Coin, *ports.Pagination, error) {
	page, limit = normalizePage(page, limit)

	coins, total, err := s.coinRepo.ListMarket(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list market: %w", err))
	}
	return coins, paginate(page, limit, total), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func paginate(page, limit int, total int64) *ports.Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
