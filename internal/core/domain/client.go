package domain

import "time"

// Client is a registered marketplace participant.
type Client struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfileSummary aggregates a client's holdings and activity counts.
type ProfileSummary struct {
	Client            Client
	CoinsOwned        int64
	TotalValue        int64
	PurchaseCount     int64
	SaleCount         int64
	TotalTransactions int64
}
