package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitslow-market/internal/adapter/http/dto"
	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/internal/core/ports/mocks"
	"bitslow-market/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authedContext(t *testing.T, method, target string, body []byte, clientID int64) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("client_id", clientID)
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data envelope: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(3 * time.Hour)
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "password123",
	}).Return(&ports.AuthResult{
		ClientID:  7,
		Name:      "Ana",
		Token:     "jwt-token",
		ExpiresAt: expiry,
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(7), data["client_id"])
	assert.Equal(t, "jwt-token", data["token"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "ana@example.com", "wrong").
		Return(nil, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Market Handler Tests ---

func TestMint_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMarket := mocks.NewMockMarketService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMarketHandler(mockMarket, mockLedger)

	ownerID := int64(7)
	mockLedger.EXPECT().Mint(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, id *int64) (*domain.Coin, error) {
			require.NotNil(t, id)
			assert.Equal(t, ownerID, *id)
			return &domain.Coin{
				ID: 42, OwnerID: id, Bit1: 3, Bit2: 7, Bit3: 9,
				Value: 45231, Fingerprint: "fp", CreatedAt: time.Now(),
			}, nil
		})

	c, w := authedContext(t, http.MethodPost, "/api/v1/market/coins", nil, ownerID)
	h.Mint(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(42), data["coin_id"])
	assert.Equal(t, "fp", data["fingerprint"])
}

func TestMint_Exhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMarket := mocks.NewMockMarketService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMarketHandler(mockMarket, mockLedger)

	mockLedger.EXPECT().Mint(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrCoinExhausted())

	c, w := authedContext(t, http.MethodPost, "/api/v1/market/coins", nil, 7)
	h.Mint(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "COIN_001", resp["error_code"])
}

func TestMarketList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMarket := mocks.NewMockMarketService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMarketHandler(mockMarket, mockLedger)

	coins := []domain.Coin{{ID: 1, Value: 11111, Fingerprint: "a", OwnerName: "Ana", ForSale: true}}
	pagination := &ports.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1}
	mockMarket.EXPECT().List(gomock.Any(), 1, 20).Return(coins, pagination, nil)

	c, w := authedContext(t, http.MethodGet, "/api/v1/market", nil, 7)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["total"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
}

// --- Coin Handler Tests ---

func setListingContext(t *testing.T, coinID string, body []byte, clientID int64) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := authedContext(t, http.MethodPatch, "/api/v1/coins/"+coinID+"/listing", body, clientID)
	c.Params = gin.Params{{Key: "id", Value: coinID}}
	return c, w
}

func TestSetListing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	mockLedger.EXPECT().SetListed(gomock.Any(), int64(42), int64(7), true).Return(nil)

	body, _ := json.Marshal(map[string]bool{"listed": true})
	c, w := setListingContext(t, "42", body, 7)
	h.SetListing(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetListing_ExplicitFalse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	mockLedger.EXPECT().SetListed(gomock.Any(), int64(42), int64(7), false).Return(nil)

	c, w := setListingContext(t, "42", []byte(`{"listed": false}`), 7)
	h.SetListing(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetListing_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	mockLedger.EXPECT().SetListed(gomock.Any(), int64(42), int64(99), true).
		Return(apperror.ErrNotOwner())

	body, _ := json.Marshal(map[string]bool{"listed": true})
	c, w := setListingContext(t, "42", body, 99)
	h.SetListing(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetListing_BadCoinID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	body, _ := json.Marshal(map[string]bool{"listed": true})
	c, w := setListingContext(t, "abc", body, 7)
	h.SetListing(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchase_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	sellerID := int64(3)
	mockLedger.EXPECT().Transfer(gomock.Any(), int64(42), int64(7)).Return(&domain.Transaction{
		ID: 11, CoinID: 42, SellerID: &sellerID, BuyerID: 7, Amount: 45231,
	}, nil)

	c, w := authedContext(t, http.MethodPost, "/api/v1/coins/42/purchase", nil, 7)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	h.Purchase(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(11), data["transaction_id"])
	assert.Equal(t, float64(45231), data["amount"])
}

func TestPurchase_SelfPurchase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	mockLedger.EXPECT().Transfer(gomock.Any(), int64(42), int64(7)).
		Return(nil, apperror.ErrSelfPurchase())

	c, w := authedContext(t, http.MethodPost, "/api/v1/coins/42/purchase", nil, 7)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	h.Purchase(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_Ordered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewCoinHandler(mockLedger)

	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	mockLedger.EXPECT().GetHistory(gomock.Any(), int64(42)).Return([]domain.HistoryEntry{
		{ClientID: 3, ClientName: "Ana", RecordedAt: first},
		{ClientID: 7, ClientName: "Bogdan", RecordedAt: second},
	}, nil)

	c, w := authedContext(t, http.MethodGet, "/api/v1/coins/42/history", nil, 7)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	history := data["history"].([]interface{})
	require.Len(t, history, 2)
	firstEntry := history[0].(map[string]interface{})
	assert.Equal(t, "Ana", firstEntry["client_name"])
}

// --- Transaction Handler Tests ---

func TestTransactionList_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTransactionHandler(mockReporting)

	mockReporting.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params ports.TransactionListParams) ([]domain.Transaction, *ports.Pagination, error) {
			assert.Equal(t, "Ana", params.BuyerName)
			require.NotNil(t, params.MinValue)
			assert.Equal(t, int64(20000), *params.MinValue)
			assert.Equal(t, "amount", params.SortBy)
			assert.False(t, params.SortDesc)
			return nil, &ports.Pagination{Page: 1, Limit: 20}, nil
		})

	c, w := authedContext(t, http.MethodGet,
		"/api/v1/transactions?buyer=Ana&min_value=20000&sort_by=amount&order=asc", nil, 7)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionList_BadMinValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTransactionHandler(mockReporting)

	c, w := authedContext(t, http.MethodGet, "/api/v1/transactions?min_value=lots", nil, 7)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Profile Handler Tests ---

func TestProfile_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	mockClient := mocks.NewMockClientService(ctrl)
	h := NewProfileHandler(mockReporting, mockClient)

	mockReporting.EXPECT().GetProfile(gomock.Any(), int64(7)).Return(&domain.ProfileSummary{
		Client:     domain.Client{ID: 7, Name: "Ana", Email: "ana@example.com", CreatedAt: time.Now()},
		CoinsOwned: 3, TotalValue: 120000, PurchaseCount: 5, SaleCount: 2, TotalTransactions: 7,
	}, nil)

	c, w := authedContext(t, http.MethodGet, "/api/v1/profile", nil, 7)
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(3), data["coins_owned"])
	assert.Equal(t, float64(120000), data["total_value"])
}

func TestProfile_UnknownView(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	mockClient := mocks.NewMockClientService(ctrl)
	h := NewProfileHandler(mockReporting, mockClient)

	c, w := authedContext(t, http.MethodGet, "/api/v1/profile?view=bogus", nil, 7)
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
