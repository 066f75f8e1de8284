package service

import (
	"context"
	"fmt"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
)

// ReportingServiceImpl implements ports.ReportingService. Read-only views;
// all writes happen in the ledger service.
type ReportingServiceImpl struct {
	clientRepo ports.ClientRepository
	coinRepo   ports.CoinRepository
	txnRepo    ports.TransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	clientRepo ports.ClientRepository,
	coinRepo ports.CoinRepository,
	txnRepo ports.TransactionRepository,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		clientRepo: clientRepo,
		coinRepo:   coinRepo,
		txnRepo:    txnRepo,
	}
}

// GetProfile returns the client record with holding and activity counters.
func (s *ReportingServiceImpl) GetProfile(ctx context.Context, clientID int64) (*domain.ProfileSummary, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}

	coinsOwned, err := s.coinRepo.CountByOwner(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count coins: %w", err))
	}
	totalValue, err := s.coinRepo.SumValueByOwner(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum coin value: %w", err))
	}
	purchases, err := s.txnRepo.CountByBuyer(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count purchases: %w", err))
	}
	sales, err := s.txnRepo.CountBySeller(ctx, clientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count sales: %w", err))
	}

	return &domain.ProfileSummary{
		Client:            *client,
		CoinsOwned:        coinsOwned,
		TotalValue:        totalValue,
		PurchaseCount:     purchases,
		SaleCount:         sales,
		TotalTransactions: purchases + sales,
	}, nil
}

// ListOwnedCoins returns the client's coins, newest first.
func (s *ReportingServiceImpl) ListOwnedCoins(ctx context.Context, clientID int64, page, limit int) ([]domain.Coin, *ports.Pagination, error) {
	page, limit = normalizePage(page, limit)

	coins, total, err := s.coinRepo.ListByOwner(ctx, clientID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list owned coins: %w", err))
	}
	return coins, paginate(page, limit, total), nil
}

// ListBuyerTransactions returns the client's purchases, newest first.
func (s *ReportingServiceImpl) ListBuyerTransactions(ctx context.Context, clientID int64, page, limit int) ([]domain.Transaction, *ports.Pagination, error) {
	page, limit = normalizePage(page, limit)

	txns, total, err := s.txnRepo.ListByBuyer(ctx, clientID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list purchases: %w", err))
	}
	return txns, paginate(page, limit, total), nil
}

// ListSellerTransactions returns the client's sales, newest first.
func (s *ReportingServiceImpl) ListSellerTransactions(ctx context.Context, clientID int64, page, limit int) ([]domain.Transaction, *ports.Pagination, error) {
	page, limit = normalizePage(page, limit)

	txns, total, err := s.txnRepo.ListBySeller(ctx, clientID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list sales: %w", err))
	}
	return txns, paginate(page, limit, total), nil
}

// ListTransactions returns the filtered global transaction feed.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, *ports.Pagination, error) {
	if params.Limit < 1 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	txns, total, err := s.txnRepo.List(ctx, params)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	page := params.Offset/params.Limit + 1
	return txns, paginate(page, params.Limit, total), nil
}
