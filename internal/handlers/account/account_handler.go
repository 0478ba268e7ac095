// internal/handlers/account/account_handler.go
package account

import (
	"net/http"

	"qarilive-service/internal/domain/account"
	"qarilive-service/internal/pkg/request"
	"qarilive-service/internal/pkg/response"
	service "qarilive-service/internal/service/account"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// ========== Admin Endpoints ==========

// ListUsers returns every account in the directory
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.accountService.ListUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to fetch users")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// CreateUser invites a master agent or agent
func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req account.CreateUserRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	result, err := h.accountService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "Failed to create user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":    result.ID,
		"email": result.Email,
		"role":  result.Role,
	})
}

// DeleteUser removes an account from the directory
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	var req account.UserIDRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	if err := h.accountService.DeleteUser(c.Request.Context(), req.ID); err != nil {
		response.FromError(c, err, "Failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, nil)
}

// DisableUser bans an account without deleting it
func (h *AccountHandler) DisableUser(c *gin.Context) {
	var req account.UserIDRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	if err := h.accountService.DisableUser(c.Request.Context(), req.ID); err != nil {
		response.FromError(c, err, "Failed to disable user")
		return
	}

	response.Success(c, http.StatusOK, nil)
}
