package postgres

import (
	"context"
	"errors"
	"fmt"

	"bitslow-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ClientRepo implements ports.ClientRepository.
type ClientRepo struct {
	pool Pool
}

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(pool Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Create inserts a new client and fills in the generated ID.
func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (name, email, phone, address, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING client_id`

	err := r.pool.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Address, c.PasswordHash, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID fetches a client by ID. Returns (nil, nil) when absent.
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT client_id, name, email, phone, address, password_hash, created_at
		FROM clients WHERE client_id = $1`

	c := &domain.Client{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PasswordHash, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return c, nil
}

// GetByEmail fetches a client by email. Returns (nil, nil) when absent.
func (r *ClientRepo) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `SELECT client_id, name, email, phone, address, password_hash, created_at
		FROM clients WHERE email = $1`

	c := &domain.Client{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PasswordHash, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by email: %w", err)
	}
	return c, nil
}

// UpdateProfile rewrites the client's editable fields.
func (r *ClientRepo) UpdateProfile(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = $1, email = $2, phone = $3, address = $4
		WHERE client_id = $5`

	tag, err := r.pool.Exec(ctx, query, c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		return fmt.Errorf("update client profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client not found: %d", c.ID)
	}
	return nil
}
