// internal/handlers/payout/payout_handler.go
package payout

import (
	"net/http"

	"qarilive-service/internal/domain/payout"
	"qarilive-service/internal/middleware"
	"qarilive-service/internal/pkg/request"
	"qarilive-service/internal/pkg/response"
	service "qarilive-service/internal/service/payout"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	payoutService *service.PayoutService
}

func NewPayoutHandler(payoutService *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// ========== Self-service Endpoints ==========

// GetMasterAgentPayout returns the caller's master-agent payout profile
func (h *PayoutHandler) GetMasterAgentPayout(c *gin.Context) {
	h.getOwn(c, payout.KindMasterAgent)
}

// SetMasterAgentPayout saves the caller's master-agent payout profile
func (h *PayoutHandler) SetMasterAgentPayout(c *gin.Context) {
	h.setOwn(c, payout.KindMasterAgent)
}

// GetAgentPayout returns the caller's agent payout profile
func (h *PayoutHandler) GetAgentPayout(c *gin.Context) {
	h.getOwn(c, payout.KindAgent)
}

// SetAgentPayout saves the caller's agent payout profile
func (h *PayoutHandler) SetAgentPayout(c *gin.Context) {
	h.setOwn(c, payout.KindAgent)
}

func (h *PayoutHandler) getOwn(c *gin.Context, kind payout.Kind) {
	p := middleware.MustGetPrincipal(c)

	profile, err := h.payoutService.GetOwn(c.Request.Context(), p, kind)
	if err != nil {
		response.FromError(c, err, "Failed to load payout details")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": profile})
}

func (h *PayoutHandler) setOwn(c *gin.Context, kind payout.Kind) {
	p := middleware.MustGetPrincipal(c)

	var req payout.SetProfileRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	profile, err := h.payoutService.SetOwn(c.Request.Context(), p, kind, &req)
	if err != nil {
		response.FromError(c, err, "Failed to save payout details")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": profile})
}

// ========== Admin Endpoints ==========

// GetBank looks up one profile by owner id or master-agent code
func (h *PayoutHandler) GetBank(c *gin.Context) {
	var q payout.LookupQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	profile, err := h.payoutService.Lookup(c.Request.Context(), q.Type, q.ID)
	if err != nil {
		response.FromError(c, err, "Failed to load bank details")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank": profile})
}

// ========== Public Endpoints ==========

// GetCard resolves a shared referral ref to the master agent's public card
func (h *PayoutHandler) GetCard(c *gin.Context) {
	card, err := h.payoutService.Card(c.Request.Context(), c.Query("ref"))
	if err != nil {
		response.FromError(c, err, "Failed to load master agent")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": card})
}
