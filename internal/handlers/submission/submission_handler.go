// internal/handlers/submission/submission_handler.go
package submission

import (
	"net/http"

	"qarilive-service/internal/domain/submission"
	"qarilive-service/internal/middleware"
	"qarilive-service/internal/pkg/dataurl"
	"qarilive-service/internal/pkg/request"
	"qarilive-service/internal/pkg/response"
	service "qarilive-service/internal/service/submission"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// ========== Agent Endpoints ==========

// Create files a commission claim with its proof image
func (h *SubmissionHandler) Create(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req submission.CreateRequest
	if err := request.BindJSONLimit(c, &req, h.submissionService.BodyLimit(), dataurl.TooLargeMessage); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	result, err := h.submissionService.Create(c.Request.Context(), p, &req)
	if err != nil {
		response.FromError(c, err, "Failed to save submission")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":         result.ID,
		"created_at": result.CreatedAt,
		"proof_url":  result.ProofURL,
	})
}

// ListOwn returns the caller's latest claims
func (h *SubmissionHandler) ListOwn(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	subs, err := h.submissionService.ListOwn(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err, "Failed to load submissions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"count":       len(subs),
		"submissions": nonNil(subs),
	})
}

// ========== Master Agent Endpoints ==========

// ListForMasterAgent returns the claims filed under a master-agent code
func (h *SubmissionHandler) ListForMasterAgent(c *gin.Context) {
	var q submission.ListQuery
	if err := request.BindQuery(c, &q); err != nil {
		response.FromError(c, err, "Invalid request")
		return
	}

	maCode, ok := middleware.ScopeMACode(c, q.MACode)
	if !ok {
		return
	}

	subs, err := h.submissionService.ListForMasterAgent(c.Request.Context(), maCode, q.Status)
	if err != nil {
		response.FromError(c, err, "Failed to load submissions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"ma_code":     maCode,
		"count":       len(subs),
		"submissions": nonNil(subs),
	})
}

func nonNil(subs []submission.Submission) []submission.Submission {
	if subs == nil {
		return []submission.Submission{}
	}
	return subs
}
