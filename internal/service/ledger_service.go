package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitslow-market/config"
	"bitslow-market/internal/bitslow"
	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. It is the only writer
// of coin state: minting, listing toggles and ownership transfers all go
// through here.
type LedgerServiceImpl struct {
	coinRepo    ports.CoinRepository
	txnRepo     ports.TransactionRepository
	historyRepo ports.HistoryRepository
	engine      *bitslow.Engine
	transactor  ports.DBTransactor
	mintCfg     config.MintConfig
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	coinRepo ports.CoinRepository,
	txnRepo ports.TransactionRepository,
	historyRepo ports.HistoryRepository,
	engine *bitslow.Engine,
	transactor ports.DBTransactor,
	mintCfg config.MintConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		coinRepo:    coinRepo,
		txnRepo:     txnRepo,
		historyRepo: historyRepo,
		engine:      engine,
		transactor:  transactor,
		mintCfg:     mintCfg,
		log:         log,
	}
}

// Mint allocates a new coin. Uniqueness of the component triple, the value
// and the fingerprint is enforced by the database; an insert rejected on a
// uniqueness constraint means another mint won the race for that sample, so
// we retry with a fresh one. Running out of attempts means the component
// space is (effectively) consumed, which is a permanent condition for the
// configured range.
func (s *LedgerServiceImpl) Mint(ctx context.Context, ownerID *int64) (*domain.Coin, error) {
	for attempt := 1; attempt <= s.mintCfg.MaxAttempts; attempt++ {
		bits, err := bitslow.DistinctRandomValues(3, s.mintCfg.ComponentMin, s.mintCfg.ComponentMax)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("sample components: %w", err))
		}

		fingerprint, err := s.engine.Compute(ctx, bits[0], bits[1], bits[2])
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("compute fingerprint: %w", err))
		}

		coin := &domain.Coin{
			OwnerID:     ownerID,
			Bit1:        bits[0],
			Bit2:        bits[1],
			Bit3:        bits[2],
			Value:       bitslow.RandomValue(s.mintCfg.ValueMin, s.mintCfg.ValueMax),
			Fingerprint: fingerprint,
			ForSale:     false,
			CreatedAt:   time.Now().UTC(),
		}

		err = s.coinRepo.Create(ctx, coin)
		if err == nil {
			s.log.Info().
				Int64("coin_id", coin.ID).
				Ints("bits", bits).
				Int("attempts", attempt).
				Msg("coin minted")
			return coin, nil
		}
		if errors.Is(err, domain.ErrDuplicateCoin) {
			continue
		}
		return nil, apperror.InternalError(fmt.Errorf("insert coin: %w", err))
	}

	s.log.Warn().
		Int("max_attempts", s.mintCfg.MaxAttempts).
		Int("component_min", s.mintCfg.ComponentMin).
		Int("component_max", s.mintCfg.ComponentMax).
		Msg("mint attempts exhausted")
	return nil, apperror.ErrCoinExhausted()
}

// SetListed toggles the for-sale flag of a coin owned by ownerID. A single
// conditional update; zero rows affected means the coin does not exist or
// belongs to someone else, and the two cases are deliberately not told apart.
func (s *LedgerServiceImpl) SetListed(ctx context.Context, coinID, ownerID int64, listed bool) error {
	updated, err := s.coinRepo.SetForSale(ctx, coinID, ownerID, listed)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("set listing: %w", err))
	}
	if !updated {
		return apperror.ErrNotOwner()
	}
	return nil
}

// Transfer sells the coin to buyerID. The coin row is locked for the
// duration of the transaction, so concurrent purchases of the same coin
// serialize and the loser sees the updated owner. The transaction record,
// the ownership change and the history entry commit or roll back together.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, coinID, buyerID int64) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	coin, err := s.coinRepo.GetByIDForUpdate(ctx, dbTx, coinID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock coin: %w", err))
	}
	if coin == nil {
		return nil, apperror.ErrNotFound("coin")
	}

	if coin.OwnerID != nil && *coin.OwnerID == buyerID {
		return nil, apperror.ErrSelfPurchase()
	}
	if !coin.Available() {
		return nil, apperror.ErrCoinNotAvailable()
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		CoinID:      coin.ID,
		SellerID:    coin.OwnerID,
		BuyerID:     buyerID,
		Amount:      coin.Value,
		Fingerprint: coin.Fingerprint,
		CreatedAt:   now,
	}

	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record transaction: %w", err))
	}
	if err := s.coinRepo.TransferOwner(ctx, dbTx, coin.ID, buyerID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transfer owner: %w", err))
	}
	if err := s.historyRepo.Append(ctx, dbTx, coin.ID, buyerID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append history: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("coin_id", coin.ID).
		Int64("buyer_id", buyerID).
		Int64("amount", txn.Amount).
		Msg("coin transferred")
	return txn, nil
}

// GetHistory returns the coin's ownership chain, oldest entry first.
func (s *LedgerServiceImpl) GetHistory(ctx context.Context, coinID int64) ([]domain.HistoryEntry, error) {
	coin, err := s.coinRepo.GetByID(ctx, coinID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get coin: %w", err))
	}
	if coin == nil {
		return nil, apperror.ErrNotFound("coin")
	}

	entries, err := s.historyRepo.ListByCoin(ctx, coinID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list history: %w", err))
	}
	return entries, nil
}
