// internal/handlers/report/report_handler.go
package report

import (
	"net/http"

	"qarilive-service/internal/domain/report"
	"qarilive-service/internal/pkg/request"
	"qarilive-service/internal/pkg/response"
	service "qarilive-service/internal/service/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// ========== Admin Endpoints ==========

// AgentStats counts agents per master-agent code
func (h *ReportHandler) AgentStats(c *gin.Context) {
	var q report.StatsQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	stats, err := h.reportService.AgentStats(c.Request.Context(), &q)
	if err != nil {
		response.FromError(c, err, "Failed to compute agent stats")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"totalUsers":    stats.TotalUsers,
		"totalAgents":   stats.TotalAgents,
		"byMasterAgent": stats.ByMasterAgent,
	})
}

// Earnings returns approved totals for one master agent or agent
func (h *ReportHandler) Earnings(c *gin.Context) {
	var q report.TargetQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	totals, err := h.reportService.Earnings(c.Request.Context(), &q)
	if err != nil {
		response.FromError(c, err, "Failed to compute earnings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"approved_count": totals.ApprovedCount,
		"total_rm":       totals.TotalRM.InexactFloat64(),
		"commission_pct": nil,
	})
}

// CreatePayoutBatch computes a one-off payout and its CSV
func (h *ReportHandler) CreatePayoutBatch(c *gin.Context) {
	var req report.PayoutBatchRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	batch, err := h.reportService.CreatePayoutBatch(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "Failed to create payout batch")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"batch_id":         batch.BatchID,
		"type":             batch.Type,
		"id":               batch.ID,
		"approved_count":   batch.ApprovedCount,
		"total_rm":         batch.TotalRM.InexactFloat64(),
		"commission_pct":   batch.CommissionPct.InexactFloat64(),
		"payout_amount_rm": batch.PayoutAmountRM.InexactFloat64(),
		"created_at":       batch.CreatedAt,
		"csv":              batch.CSV,
	})
}
