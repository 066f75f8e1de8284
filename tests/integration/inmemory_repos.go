package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Client Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	nextID  int64
	clients map[int64]*domain.Client
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{clients: make(map[int64]*domain.Client)}
}

func (r *inMemoryClientRepo) Create(ctx context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.Email == c.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *inMemoryClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryClientRepo) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryClientRepo) UpdateProfile(ctx context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return fmt.Errorf("client not found: %d", c.ID)
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *inMemoryClientRepo) nameOf(id int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.clients[id]; ok {
		return c.Name
	}
	return ""
}

// --- In-Memory Coin Repo ---

type inMemoryCoinRepo struct {
	mu      sync.RWMutex
	nextID  int64
	coins   map[int64]*domain.Coin
	clients *inMemoryClientRepo
}

func newInMemoryCoinRepo(clients *inMemoryClientRepo) *inMemoryCoinRepo {
	return &inMemoryCoinRepo{coins: make(map[int64]*domain.Coin), clients: clients}
}

func (r *inMemoryCoinRepo) Create(ctx context.Context, c *domain.Coin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.coins {
		if (existing.Bit1 == c.Bit1 && existing.Bit2 == c.Bit2 && existing.Bit3 == c.Bit3) ||
			existing.Value == c.Value ||
			existing.Fingerprint == c.Fingerprint {
			return domain.ErrDuplicateCoin
		}
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.coins[c.ID] = &cp
	return nil
}

func (r *inMemoryCoinRepo) GetByID(ctx context.Context, id int64) (*domain.Coin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coins[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCoinRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Coin, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryCoinRepo) SetForSale(ctx context.Context, coinID, ownerID int64, forSale bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coins[coinID]
	if !ok || c.OwnerID == nil || *c.OwnerID != ownerID {
		return false, nil
	}
	c.ForSale = forSale
	return true, nil
}

func (r *inMemoryCoinRepo) TransferOwner(ctx context.Context, tx pgx.Tx, coinID, newOwnerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coins[coinID]
	if !ok {
		return fmt.Errorf("coin not found: %d", coinID)
	}
	owner := newOwnerID
	c.OwnerID = &owner
	c.ForSale = false
	return nil
}

func (r *inMemoryCoinRepo) ListMarket(ctx context.Context, limit, offset int) ([]domain.Coin, int64, error) {
	r.mu.RLock()
	var result []domain.Coin
	for _, c := range r.coins {
		if c.ForSale || c.OwnerID == nil {
			cp := *c
			if cp.OwnerID != nil {
				cp.OwnerName = r.clients.nameOf(*cp.OwnerID)
			}
			result = append(result, cp)
		}
	}
	r.mu.RUnlock()
	sortCoinsNewestFirst(result)
	total := int64(len(result))
	return pageCoins(result, limit, offset), total, nil
}

func (r *inMemoryCoinRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Coin, int64, error) {
	r.mu.RLock()
	var result []domain.Coin
	for _, c := range r.coins {
		if c.OwnerID != nil && *c.OwnerID == ownerID {
			cp := *c
			cp.OwnerName = r.clients.nameOf(ownerID)
			result = append(result, cp)
		}
	}
	r.mu.RUnlock()
	sortCoinsNewestFirst(result)
	total := int64(len(result))
	return pageCoins(result, limit, offset), total, nil
}

func (r *inMemoryCoinRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.coins {
		if c.OwnerID != nil && *c.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryCoinRepo) SumValueByOwner(ctx context.Context, ownerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, c := range r.coins {
		if c.OwnerID != nil && *c.OwnerID == ownerID {
			sum += c.Value
		}
	}
	return sum, nil
}

func sortCoinsNewestFirst(coins []domain.Coin) {
	sort.Slice(coins, func(i, j int) bool {
		if !coins[i].CreatedAt.Equal(coins[j].CreatedAt) {
			return coins[i].CreatedAt.After(coins[j].CreatedAt)
		}
		return coins[i].ID > coins[j].ID
	})
}

func pageCoins(coins []domain.Coin, limit, offset int) []domain.Coin {
	if offset >= len(coins) {
		return []domain.Coin{}
	}
	end := offset + limit
	if end > len(coins) {
		end = len(coins)
	}
	return coins[offset:end]
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	nextID  int64
	txns    map[int64]*domain.Transaction
	clients *inMemoryClientRepo
}

func newInMemoryTransactionRepo(clients *inMemoryClientRepo) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txns: make(map[int64]*domain.Transaction), clients: clients}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.txns[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := r.withNames(*t)
	return &cp, nil
}

func (r *inMemoryTransactionRepo) withNames(t domain.Transaction) domain.Transaction {
	if t.SellerID != nil {
		t.SellerName = r.clients.nameOf(*t.SellerID)
	}
	t.BuyerName = r.clients.nameOf(t.BuyerID)
	return t
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	var result []domain.Transaction
	for _, t := range r.txns {
		result = append(result, r.withNames(*t))
	}
	r.mu.RUnlock()

	filtered := result[:0]
	for _, t := range result {
		if params.BuyerName != "" && !strings.Contains(strings.ToLower(t.BuyerName), strings.ToLower(params.BuyerName)) {
			continue
		}
		if params.SellerName != "" && !strings.Contains(strings.ToLower(t.SellerName), strings.ToLower(params.SellerName)) {
			continue
		}
		if params.MinValue != nil && t.Amount < *params.MinValue {
			continue
		}
		if params.MaxValue != nil && t.Amount > *params.MaxValue {
			continue
		}
		if params.From != nil && t.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && t.CreatedAt.After(*params.To) {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.Slice(filtered, func(i, j int) bool {
		var less bool
		switch params.SortBy {
		case "amount":
			less = filtered[i].Amount < filtered[j].Amount
		case "coin":
			less = filtered[i].CoinID < filtered[j].CoinID
		case "buyer":
			less = filtered[i].BuyerName < filtered[j].BuyerName
		case "seller":
			less = filtered[i].SellerName < filtered[j].SellerName
		default:
			less = filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		if params.SortDesc {
			return !less
		}
		return less
	})

	total := int64(len(filtered))
	if params.Offset >= len(filtered) {
		return []domain.Transaction{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[params.Offset:end], total, nil
}

func (r *inMemoryTransactionRepo) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	return r.listBySide(func(t *domain.Transaction) bool { return t.BuyerID == buyerID }, limit, offset)
}

func (r *inMemoryTransactionRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	return r.listBySide(func(t *domain.Transaction) bool {
		return t.SellerID != nil && *t.SellerID == sellerID
	}, limit, offset)
}

func (r *inMemoryTransactionRepo) listBySide(match func(*domain.Transaction) bool, limit, offset int) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	var result []domain.Transaction
	for _, t := range r.txns {
		if match(t) {
			result = append(result, r.withNames(*t))
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))
	if offset >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (r *inMemoryTransactionRepo) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.txns {
		if t.BuyerID == buyerID {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryTransactionRepo) CountBySeller(ctx context.Context, sellerID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.txns {
		if t.SellerID != nil && *t.SellerID == sellerID {
			count++
		}
	}
	return count, nil
}

// --- In-Memory History Repo ---

type inMemoryHistoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.HistoryEntry
	clients *inMemoryClientRepo
}

func newInMemoryHistoryRepo(clients *inMemoryClientRepo) *inMemoryHistoryRepo {
	return &inMemoryHistoryRepo{clients: clients}
}

func (r *inMemoryHistoryRepo) Append(ctx context.Context, tx pgx.Tx, coinID, clientID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.entries = append(r.entries, domain.HistoryEntry{
		ID:         r.nextID,
		CoinID:     coinID,
		ClientID:   clientID,
		RecordedAt: at,
	})
	return nil
}

func (r *inMemoryHistoryRepo) ListByCoin(ctx context.Context, coinID int64) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	var result []domain.HistoryEntry
	for _, e := range r.entries {
		if e.CoinID == coinID {
			e.ClientName = r.clients.nameOf(e.ClientID)
			result = append(result, e)
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].RecordedAt.Before(result[j].RecordedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// --- In-Memory Transactor (serialized tx) ---

// inMemoryTransactor serializes transactions with a mutex so that the
// lock-then-check flow of a purchase behaves like row locking does against
// a real database.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: sync.OnceFunc(t.mu.Unlock)}, nil
}

// memTx is a pgx.Tx implementation that only tracks the serialization lock.
// Commit and Rollback are both safe to call; the lock is released once.
type memTx struct {
	release func()
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }
