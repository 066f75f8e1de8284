package service

import (
	"context"
	"testing"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"
	"bitslow-market/internal/core/ports/mocks"
	"bitslow-market/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestClientService_UpdateProfile_PartialEdit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clientRepo := mocks.NewMockClientRepository(ctrl)
	svc := NewClientService(clientRepo)
	ctx := context.Background()

	existing := &domain.Client{ID: 7, Name: "Ana", Email: "ana@example.com", Phone: "123"}
	newPhone := "456"

	clientRepo.EXPECT().GetByID(ctx, int64(7)).Return(existing, nil)
	clientRepo.EXPECT().UpdateProfile(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Client) error {
			assert.Equal(t, "Ana", c.Name, "untouched field stays")
			assert.Equal(t, "456", c.Phone)
			return nil
		})

	updated, err := svc.UpdateProfile(ctx, 7, ports.ProfileUpdate{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, "456", updated.Phone)
}

func TestClientService_UpdateProfile_EmailConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clientRepo := mocks.NewMockClientRepository(ctrl)
	svc := NewClientService(clientRepo)
	ctx := context.Background()

	existing := &domain.Client{ID: 7, Email: "ana@example.com"}
	taken := "taken@example.com"

	clientRepo.EXPECT().GetByID(ctx, int64(7)).Return(existing, nil)
	clientRepo.EXPECT().GetByEmail(ctx, taken).Return(&domain.Client{ID: 9, Email: taken}, nil)

	_, err := svc.UpdateProfile(ctx, 7, ports.ProfileUpdate{Email: &taken})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestClientService_GetByID_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clientRepo := mocks.NewMockClientRepository(ctrl)
	svc := NewClientService(clientRepo)
	ctx := context.Background()

	clientRepo.EXPECT().GetByID(ctx, int64(404)).Return(nil, nil)

	_, err := svc.GetByID(ctx, 404)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COIN_005", appErr.Code)
}
