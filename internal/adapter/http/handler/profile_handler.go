package handler

import (
	"time"

	"bitslow-market/internal/adapter/http/dto"
	"bitslow-market/internal/core/ports"
	"bitslow-market/pkg/apperror"
	"bitslow-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles the authenticated client's profile views.
type ProfileHandler struct {
	reportingSvc ports.ReportingService
	clientSvc    ports.ClientService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(reportingSvc ports.ReportingService, clientSvc ports.ClientService) *ProfileHandler {
	return &ProfileHandler{reportingSvc: reportingSvc, clientSvc: clientSvc}
}

// Get handles GET /api/v1/profile. The view query parameter selects the
// summary (default), the owned coins, the purchases or the sales.
func (h *ProfileHandler) Get(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}

	switch view := c.DefaultQuery("view", "summary"); view {
	case "summary":
		h.summary(c, clientID)
	case "coins":
		page, limit := pageQuery(c)
		coins, pagination, err := h.reportingSvc.ListOwnedCoins(c.Request.Context(), clientID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, coinListToDTO(coins, pagination))
	case "purchases":
		page, limit := pageQuery(c)
		txns, pagination, err := h.reportingSvc.ListBuyerTransactions(c.Request.Context(), clientID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, txnListToDTO(txns, pagination))
	case "sales":
		page, limit := pageQuery(c)
		txns, pagination, err := h.reportingSvc.ListSellerTransactions(c.Request.Context(), clientID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, txnListToDTO(txns, pagination))
	default:
		response.Error(c, apperror.Validation("unknown view: "+view))
	}
}

func (h *ProfileHandler) summary(c *gin.Context, clientID int64) {
	profile, err := h.reportingSvc.GetProfile(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProfileResponse{
		ClientID:          profile.Client.ID,
		Name:              profile.Client.Name,
		Email:             profile.Client.Email,
		Phone:             profile.Client.Phone,
		Address:           profile.Client.Address,
		CoinsOwned:        profile.CoinsOwned,
		TotalValue:        profile.TotalValue,
		PurchaseCount:     profile.PurchaseCount,
		SaleCount:         profile.SaleCount,
		TotalTransactions: profile.TotalTransactions,
		MemberSince:       profile.Client.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Update handles PATCH /api/v1/profile — partial edit of contact fields.
func (h *ProfileHandler) Update(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	client, err := h.clientSvc.UpdateProfile(c.Request.Context(), clientID, ports.ProfileUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"client_id": client.ID,
		"name":      client.Name,
		"email":     client.Email,
		"phone":     client.Phone,
		"address":   client.Address,
	})
}
