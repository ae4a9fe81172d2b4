package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/kpiboard/backend/internal/application/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
)

// BatchHandler handles change-batch review endpoints
type BatchHandler struct {
	BaseHandler
	batches *reviewapp.BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batches *reviewapp.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// CreateBatchRequest represents a request to record a batch header
// @Description Request body for recording a submitted change batch
type CreateBatchRequest struct {
	KPIID        string `json:"kpi_id" binding:"required,uuid"`
	PlanID       string `json:"plan_id" binding:"required,uuid"`
	Year         int    `json:"year" binding:"required,min=2000,max=2100"`
	Frequency    string `json:"frequency" binding:"required,oneof=MONTHLY QUARTERLY"`
	PeriodMin    int    `json:"period_min" binding:"required,min=1"`
	PeriodMax    int    `json:"period_max" binding:"required,min=1"`
	CreatedCount int    `json:"created_count" binding:"min=0"`
	SkippedCount int    `json:"skipped_count" binding:"min=0"`
}

// RejectBatchRequest represents a request to reject a batch
// @Description Request body for rejecting a pending batch
type RejectBatchRequest struct {
	Reason string `json:"reason"`
}

// Create godoc
// @Summary      Record a change batch
// @Description  Record a pending batch header that groups individually submitted changes.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Submitting user ID" format(uuid)
// @Param        request body CreateBatchRequest true "Batch creation request"
// @Success      201 {object} dto.Response{data=reviewapp.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	kpiID, err := uuid.Parse(req.KPIID)
	if err != nil {
		h.BadRequest(c, "Invalid KPI ID format")
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	batch, err := h.batches.CreateBatch(c.Request.Context(), reviewapp.CreateBatchRequest{
		KPIID:        kpiID,
		PlanID:       planID,
		Year:         req.Year,
		Frequency:    scorecard.Frequency(req.Frequency),
		PeriodMin:    req.PeriodMin,
		PeriodMax:    req.PeriodMax,
		SubmittedBy:  userID,
		CreatedCount: req.CreatedCount,
		SkippedCount: req.SkippedCount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetByID godoc
// @Summary      Get batch by ID
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=reviewapp.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /batches/{id} [get]
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	batch, err := h.batches.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// ListPending godoc
// @Summary      List pending batches
// @Description  List batches awaiting review, oldest submission first.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=[]reviewapp.BatchResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /batches/pending [get]
func (h *BatchHandler) ListPending(c *gin.Context) {
	batches, err := h.batches.ListPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// Approve godoc
// @Summary      Approve a batch
// @Description  Approve all still-pending children of the batch. Children already resolved individually are skipped and reported in the outcome.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Reviewing user ID" format(uuid)
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=review.BatchOutcome}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /batches/{id}/approve [post]
func (h *BatchHandler) Approve(c *gin.Context) {
	reviewer, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	outcome, err := h.batches.ApproveBatch(c.Request.Context(), batchID, reviewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, outcome)
}

// Reject godoc
// @Summary      Reject a batch
// @Description  Reject all still-pending children of the batch with the given reason.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Reviewing user ID" format(uuid)
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body RejectBatchRequest true "Rejection with reason"
// @Success      200 {object} dto.Response{data=review.BatchOutcome}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /batches/{id}/reject [post]
func (h *BatchHandler) Reject(c *gin.Context) {
	reviewer, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req RejectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.batches.RejectBatch(c.Request.Context(), batchID, reviewer, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, outcome)
}
