// internal/app/router.go
package app

import (
	accountHandler "qarilive-service/internal/handlers/account"
	agentHandler "qarilive-service/internal/handlers/agent"
	healthHandler "qarilive-service/internal/handlers/health"
	payoutHandler "qarilive-service/internal/handlers/payout"
	reportHandler "qarilive-service/internal/handlers/report"
	submissionHandler "qarilive-service/internal/handlers/submission"
	"qarilive-service/internal/middleware"
	"qarilive-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	HealthHandler     *healthHandler.HealthHandler
	AccountHandler    *accountHandler.AccountHandler
	AgentHandler      *agentHandler.AgentHandler
	PayoutHandler     *payoutHandler.PayoutHandler
	SubmissionHandler *submissionHandler.SubmissionHandler
	ReportHandler     *reportHandler.ReportHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// Every route answers a wrong method with the 405 envelope.
	r.HandleMethodNotAllowed = true
	r.NoMethod(response.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})

	api := r.Group("/api")

	// ==================== Public Routes ====================
	api.GET("/health", h.HealthHandler.Check)
	api.GET("/ma/card", h.PayoutHandler.GetCard)

	// ==================== Admin Routes ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/users", h.AccountHandler.ListUsers)
		admin.POST("/users", h.AccountHandler.CreateUser)
		admin.POST("/users/delete", h.AccountHandler.DeleteUser)
		admin.POST("/users/disable", h.AccountHandler.DisableUser)

		admin.GET("/agent-stats", h.ReportHandler.AgentStats)
		admin.GET("/earnings", h.ReportHandler.Earnings)
		admin.POST("/payout-batches", h.ReportHandler.CreatePayoutBatch)

		admin.GET("/bank", h.PayoutHandler.GetBank)
	}

	// ==================== Master Agent Routes ====================
	ma := api.Group("/ma")
	ma.Use(h.AuthMiddleware.Auth())
	{
		ma.GET("/payout", h.PayoutHandler.GetMasterAgentPayout)
		ma.POST("/payout", h.PayoutHandler.SetMasterAgentPayout)

		// owner-or-admin is checked per request against the ma_code query
		ma.GET("/agents", h.AgentHandler.ListRoster)
		ma.GET("/agent-count", h.AgentHandler.CountRoster)
		ma.GET("/submissions", h.SubmissionHandler.ListForMasterAgent)
	}

	// ==================== Agent Routes ====================
	agent := api.Group("/agent")
	agent.Use(h.AuthMiddleware.Auth())
	{
		agent.GET("/payout", h.PayoutHandler.GetAgentPayout)
		agent.POST("/payout", h.PayoutHandler.SetAgentPayout)
		agent.POST("/register", h.AgentHandler.Register)
		agent.GET("/submissions", h.SubmissionHandler.ListOwn)
		agent.POST("/submissions", h.SubmissionHandler.Create)
	}
}
