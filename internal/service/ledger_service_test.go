package service

import (
	"context"
	"testing"

	"bitslow-market/config"
	"bitslow-market/internal/bitslow"
	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports/mocks"
	"bitslow-market/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	coinRepo    *mocks.MockCoinRepository
	txnRepo     *mocks.MockTransactionRepository
	historyRepo *mocks.MockHistoryRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func testMintConfig() config.MintConfig {
	return config.MintConfig{
		ComponentMin: 1,
		ComponentMax: 10,
		ValueMin:     10_000,
		ValueMax:     99_999,
		MaxAttempts:  100,
		Iterations:   100, // keep tests fast
		Workers:      2,
	}
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		coinRepo:    mocks.NewMockCoinRepository(ctrl),
		txnRepo:     mocks.NewMockTransactionRepository(ctrl),
		historyRepo: mocks.NewMockHistoryRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	cfg := testMintConfig()
	d.svc = NewLedgerService(
		d.coinRepo, d.txnRepo, d.historyRepo,
		bitslow.NewEngine(cfg.Iterations, cfg.Workers),
		d.transactor, cfg, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

// ==================== Mint Tests ====================

func TestLedgerService_Mint_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := int64(7)

	d.coinRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Coin) error {
			c.ID = 42
			return nil
		})

	coin, err := d.svc.Mint(ctx, &ownerID)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, int64(42), coin.ID)
	require.NotNil(t, coin.OwnerID)
	assert.Equal(t, ownerID, *coin.OwnerID)
	assert.False(t, coin.ForSale)

	// Components are distinct and within the configured range.
	bits := []int{coin.Bit1, coin.Bit2, coin.Bit3}
	seen := map[int]struct{}{}
	for _, b := range bits {
		assert.GreaterOrEqual(t, b, 1)
		assert.LessOrEqual(t, b, 10)
		seen[b] = struct{}{}
	}
	assert.Len(t, seen, 3)

	assert.GreaterOrEqual(t, coin.Value, int64(10_000))
	assert.LessOrEqual(t, coin.Value, int64(99_999))
	assert.Equal(t, bitslow.ComputeN(coin.Bit1, coin.Bit2, coin.Bit3, 100), coin.Fingerprint)
}

func TestLedgerService_Mint_RetriesOnDuplicate(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	// First two samples collide, third lands.
	d.coinRepo.EXPECT().Create(ctx, gomock.Any()).Return(domain.ErrDuplicateCoin).Times(2)
	d.coinRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Coin) error {
			c.ID = 1
			return nil
		})

	coin, err := d.svc.Mint(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), coin.ID)
	assert.Nil(t, coin.OwnerID)
}

func TestLedgerService_Mint_Exhausted(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.coinRepo.EXPECT().Create(ctx, gomock.Any()).Return(domain.ErrDuplicateCoin).Times(100)

	coin, err := d.svc.Mint(ctx, nil)
	assert.Nil(t, coin)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_001", appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

// ==================== SetListed Tests ====================

func TestLedgerService_SetListed_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.coinRepo.EXPECT().SetForSale(ctx, int64(42), int64(7), true).Return(true, nil)

	err := d.svc.SetListed(ctx, 42, 7, true)
	assert.NoError(t, err)
}

func TestLedgerService_SetListed_NotOwner(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.coinRepo.EXPECT().SetForSale(ctx, int64(42), int64(99), false).Return(false, nil)

	err := d.svc.SetListed(ctx, 42, 99, false)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_002", appErr.Code)
	assert.Equal(t, 403, appErr.HTTPStatus)
}

// ==================== Transfer Tests ====================

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	sellerID := int64(3)
	coin := &domain.Coin{
		ID:          42,
		OwnerID:     &sellerID,
		Value:       45231,
		Fingerprint: "fp-42",
		ForSale:     true,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coinRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(coin, nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			txn.ID = 11
			return nil
		})
	d.coinRepo.EXPECT().TransferOwner(ctx, tx, int64(42), int64(7)).Return(nil)
	d.historyRepo.EXPECT().Append(ctx, tx, int64(42), int64(7), gomock.Any()).Return(nil)

	txn, err := d.svc.Transfer(ctx, 42, 7)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, int64(11), txn.ID)
	assert.Equal(t, int64(45231), txn.Amount)
	assert.Equal(t, "fp-42", txn.Fingerprint)
	require.NotNil(t, txn.SellerID)
	assert.Equal(t, sellerID, *txn.SellerID)
	assert.Equal(t, int64(7), txn.BuyerID)
}

func TestLedgerService_Transfer_UnownedCoin(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	coin := &domain.Coin{ID: 42, OwnerID: nil, Value: 10000, Fingerprint: "fp", ForSale: false}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coinRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(coin, nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.coinRepo.EXPECT().TransferOwner(ctx, tx, int64(42), int64(7)).Return(nil)
	d.historyRepo.EXPECT().Append(ctx, tx, int64(42), int64(7), gomock.Any()).Return(nil)

	txn, err := d.svc.Transfer(ctx, 42, 7)
	require.NoError(t, err)
	assert.Nil(t, txn.SellerID, "coin from the unowned pool has no seller")
}

func TestLedgerService_Transfer_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coinRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(999)).Return(nil, nil)

	_, err := d.svc.Transfer(ctx, 999, 7)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_005", appErr.Code)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestLedgerService_Transfer_SelfPurchase(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	buyerID := int64(7)
	coin := &domain.Coin{ID: 42, OwnerID: &buyerID, ForSale: true}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coinRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(coin, nil)

	_, err := d.svc.Transfer(ctx, 42, buyerID)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_004", appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestLedgerService_Transfer_NotAvailable(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	ownerID := int64(3)
	coin := &domain.Coin{ID: 42, OwnerID: &ownerID, ForSale: false}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coinRepo.EXPECT().GetByIDForUpdate(ctx, tx, int64(42)).Return(coin, nil)

	_, err := d.svc.Transfer(ctx, 42, 7)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_003", appErr.Code)
	assert.Equal(t, 403, appErr.HTTPStatus)
}

// ==================== GetHistory Tests ====================

func TestLedgerService_GetHistory(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	entries := []domain.HistoryEntry{
		{ID: 1, CoinID: 42, ClientID: 3, ClientName: "Ana"},
		{ID: 2, CoinID: 42, ClientID: 7, ClientName: "Bogdan"},
	}

	d.coinRepo.EXPECT().GetByID(ctx, int64(42)).Return(&domain.Coin{ID: 42}, nil)
	d.historyRepo.EXPECT().ListByCoin(ctx, int64(42)).Return(entries, nil)

	result, err := d.svc.GetHistory(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entries, result)
}

func TestLedgerService_GetHistory_CoinNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.coinRepo.EXPECT().GetByID(ctx, int64(999)).Return(nil, nil)

	_, err := d.svc.GetHistory(ctx, 999)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_005", appErr.Code)
}
