package service

import (
	"context"
	"fmt"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
)

// ClientServiceImpl implements ports.ClientService.
type ClientServiceImpl struct {
	clientRepo ports.ClientRepository
}

// NewClientService creates a new ClientServiceImpl.
func NewClientService(clientRepo ports.ClientRepository) *ClientServiceImpl {
	return &ClientServiceImpl{clientRepo: clientRepo}
}

// GetByID fetches a client by ID.
func (s *ClientServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}
	return client, nil
}

// UpdateProfile applies a partial edit to the client's profile fields.
func (s *ClientServiceImpl) UpdateProfile(ctx context.Context, id int64, in ports.ProfileUpdate) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}

	if in.Email != nil && *in.Email != client.Email {
		existing, err := s.clientRepo.GetByEmail(ctx, *in.Email)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
		}
		if existing != nil {
			return nil, apperror.ErrEmailExists()
		}
		client.Email = *in.Email
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Address != nil {
		client.Address = *in.Address
	}

	if err := s.clientRepo.UpdateProfile(ctx, client); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update profile: %w", err))
	}
	return client, nil
}
