// internal/handlers/agent/agent_handler.go
package agent

import (
	"net/http"

	"qarilive-service/internal/domain/agent"
	"qarilive-service/internal/middleware"
	"qarilive-service/internal/pkg/request"
	"qarilive-service/internal/pkg/response"
	accountService "qarilive-service/internal/service/account"
	service "qarilive-service/internal/service/agent"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	agentService   *service.AgentService
	accountService *accountService.AccountService
}

func NewAgentHandler(agentService *service.AgentService, accountService *accountService.AccountService) *AgentHandler {
	return &AgentHandler{
		agentService:   agentService,
		accountService: accountService,
	}
}

// ========== Agent Endpoints ==========

// Register records the calling agent in the registry on login
func (h *AgentHandler) Register(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req agent.RegisterRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	entry, err := h.agentService.Register(c.Request.Context(), p, &req)
	if err != nil {
		response.FromError(c, err, "Failed to register agent")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": entry})
}

// ========== Master Agent Endpoints ==========

// ListRoster returns the agents under a master-agent code
func (h *AgentHandler) ListRoster(c *gin.Context) {
	var q agent.RosterQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	maCode, ok := middleware.ScopeMACode(c, q.MACode)
	if !ok {
		return
	}

	agents, err := h.accountService.ListAgents(c.Request.Context(), maCode, q.Source)
	if err != nil {
		response.FromError(c, err, "Failed to fetch agents")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"ma_code": maCode,
		"count":   len(agents),
		"agents":  agents,
	})
}

// CountRoster returns how many agents sit under a master-agent code
func (h *AgentHandler) CountRoster(c *gin.Context) {
	var q agent.RosterQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	maCode, ok := middleware.ScopeMACode(c, q.MACode)
	if !ok {
		return
	}

	count, err := h.accountService.CountAgents(c.Request.Context(), maCode, q.Source)
	if err != nil {
		response.FromError(c, err, "Failed to count agents")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"ma_code": maCode,
		"count":   count,
	})
}
