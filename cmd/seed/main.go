// Package main provides a CLI for creating the database schema and,
// optionally, seeding the local development database with demo data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"bitslow-market/config"
	pgStorage "bitslow-market/internal/adapter/storage/postgres"
	"bitslow-market/internal/bitslow"
	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/service"
	"bitslow-market/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
    client_id     BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    phone         TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS coins (
    coin_id     BIGSERIAL PRIMARY KEY,
    client_id   BIGINT REFERENCES clients(client_id),
    bit1        INT NOT NULL,
    bit2        INT NOT NULL,
    bit3        INT NOT NULL,
    value       BIGINT NOT NULL,
    fingerprint TEXT NOT NULL,
    for_sale    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT coins_bits_unique UNIQUE (bit1, bit2, bit3),
    CONSTRAINT coins_value_unique UNIQUE (value),
    CONSTRAINT coins_fingerprint_unique UNIQUE (fingerprint)
);

CREATE TABLE IF NOT EXISTS transactions (
    transaction_id   BIGSERIAL PRIMARY KEY,
    coin_id          BIGINT NOT NULL REFERENCES coins(coin_id),
    seller_id        BIGINT REFERENCES clients(client_id),
    buyer_id         BIGINT NOT NULL REFERENCES clients(client_id),
    amount           BIGINT NOT NULL,
    fingerprint      TEXT NOT NULL,
    transaction_date TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS coin_history (
    history_id  BIGSERIAL PRIMARY KEY,
    coin_id     BIGINT NOT NULL REFERENCES coins(coin_id),
    client_id   BIGINT NOT NULL REFERENCES clients(client_id),
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_coins_for_sale ON coins (for_sale) WHERE for_sale = TRUE;
CREATE INDEX IF NOT EXISTS idx_coins_owner ON coins (client_id);
CREATE INDEX IF NOT EXISTS idx_transactions_buyer ON transactions (buyer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_seller ON transactions (seller_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (transaction_date);
CREATE INDEX IF NOT EXISTS idx_coin_history_coin ON coin_history (coin_id, recorded_at);
`

type demoClient struct {
	name, email, phone, address, password string
}

var demoClients = []demoClient{
	{"Ana Popescu", "ana@example.com", "+40721234567", "Str. Victoriei 10, Bucharest", "parola-anei"},
	{"Bogdan Ionescu", "bogdan@example.com", "+40731234567", "Bd. Unirii 22, Cluj", "parola-lui-bogdan"},
	{"Carmen Dima", "carmen@example.com", "", "", "parola-carmenei"},
}

func main() {
	var (
		demo       bool
		demoCoins  int
		iterations int
	)
	flag.BoolVar(&demo, "demo", false, "insert demo clients, coins and transactions")
	flag.IntVar(&demoCoins, "coins", 9, "number of demo coins to mint (max 10, needs -demo)")
	flag.IntVar(&iterations, "iterations", bitslow.DefaultIterations, "fingerprint iterations for demo coins")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx := context.Background()
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Msg("Schema applied")

	if !demo {
		return
	}
	if demoCoins > 10 {
		demoCoins = 10
	}

	if err := seedDemoData(ctx, pool, demoCoins, iterations); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}
	log.Info().Int("clients", len(demoClients)).Int("coins", demoCoins).Msg("Demo data seeded")
}

func seedDemoData(ctx context.Context, pool pgStorage.Pool, coins, iterations int) error {
	clientRepo := pgStorage.NewClientRepo(pool)
	coinRepo := pgStorage.NewCoinRepo(pool)
	txnRepo := pgStorage.NewTransactionRepo(pool)
	historyRepo := pgStorage.NewHistoryRepo(pool)
	hashSvc := service.NewArgon2HashService()

	clientIDs := make([]int64, 0, len(demoClients))
	for _, d := range demoClients {
		existing, err := clientRepo.GetByEmail(ctx, d.email)
		if err != nil {
			return fmt.Errorf("check client %s: %w", d.email, err)
		}
		if existing != nil {
			clientIDs = append(clientIDs, existing.ID)
			continue
		}
		hash, err := hashSvc.Hash(d.password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		c := &domain.Client{
			Name:         d.name,
			Email:        d.email,
			Phone:        d.phone,
			Address:      d.address,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := clientRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("create client %s: %w", d.email, err)
		}
		clientIDs = append(clientIDs, c.ID)
	}

	// Deterministic component triples keep reruns idempotent: duplicates are
	// rejected by the uniqueness constraints and skipped.
	minted := 0
	for b1 := 1; b1 <= 10 && minted < coins; b1++ {
		b2 := b1%10 + 1
		b3 := b2%10 + 1
		owner := clientIDs[minted%len(clientIDs)]
		coin := &domain.Coin{
			OwnerID:     &owner,
			Bit1:        b1,
			Bit2:        b2,
			Bit3:        b3,
			Value:       int64(10000 + minted*7919),
			Fingerprint: bitslow.ComputeN(b1, b2, b3, iterations),
			ForSale:     minted%2 == 0,
			CreatedAt:   time.Now().UTC(),
		}
		err := coinRepo.Create(ctx, coin)
		if errors.Is(err, domain.ErrDuplicateCoin) {
			minted++
			continue
		}
		if err != nil {
			return fmt.Errorf("create coin %d/%d/%d: %w", b1, b2, b3, err)
		}

		// One seeded purchase so the transaction feed isn't empty.
		if minted == 0 && len(clientIDs) > 1 {
			if err := seedPurchase(ctx, pool, txnRepo, historyRepo, coinRepo, coin, clientIDs[1]); err != nil {
				return err
			}
		}
		minted++
	}
	return nil
}

func seedPurchase(
	ctx context.Context,
	pool pgStorage.Pool,
	txnRepo *pgStorage.TransactionRepo,
	historyRepo *pgStorage.HistoryRepo,
	coinRepo *pgStorage.CoinRepo,
	coin *domain.Coin,
	buyerID int64,
) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txn := &domain.Transaction{
		CoinID:      coin.ID,
		SellerID:    coin.OwnerID,
		BuyerID:     buyerID,
		Amount:      coin.Value,
		Fingerprint: coin.Fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := txnRepo.Create(ctx, tx, txn); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	if err := coinRepo.TransferOwner(ctx, tx, coin.ID, buyerID); err != nil {
		return fmt.Errorf("transfer owner: %w", err)
	}
	if err := historyRepo.Append(ctx, tx, coin.ID, buyerID, txn.CreatedAt); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return tx.Commit(ctx)
}
