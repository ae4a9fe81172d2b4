package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/kpiboard/backend/internal/application/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/shopspring/decimal"
)

// ChangeHandler handles fact-change workflow endpoints
type ChangeHandler struct {
	BaseHandler
	ledger *reviewapp.ChangeLedgerService
}

// NewChangeHandler creates a new ChangeHandler
func NewChangeHandler(ledger *reviewapp.ChangeLedgerService) *ChangeHandler {
	return &ChangeHandler{ledger: ledger}
}

// SubmitChangeRequest represents a request to submit a fact change for review
// @Description Request body for submitting a pending fact change
type SubmitChangeRequest struct {
	FactID      string           `json:"fact_id" binding:"required,uuid"`
	Actual      *decimal.Decimal `json:"actual"`
	Target      *decimal.Decimal `json:"target"`
	Forecast    *decimal.Decimal `json:"forecast"`
	NotifyOwner *bool            `json:"notify_owner"`
	BatchID     *string          `json:"batch_id" binding:"omitempty,uuid"`
}

// ResolveChangeRequest represents a request to reject a pending change
// @Description Request body for rejecting a pending fact change
type ResolveChangeRequest struct {
	Reason        string `json:"reason"`
	SuppressEmail bool   `json:"suppress_email"`
}

// ApproveChangeRequest represents a request to approve a pending change
// @Description Request body for approving a pending fact change
type ApproveChangeRequest struct {
	SuppressEmail bool `json:"suppress_email"`
}

// ChangeStateResponse reports the workflow state of a fact
// @Description Workflow state of a fact with its latest change, if any
type ChangeStateResponse struct {
	FactID string                    `json:"fact_id"`
	State  string                    `json:"state"`
	Change *reviewapp.ChangeResponse `json:"change,omitempty"`
}

// Submit godoc
// @Summary      Submit a fact change
// @Description  Record a pending change against a fact. At most one pending change may exist per fact.
// @Tags         changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Submitting user ID" format(uuid)
// @Param        request body SubmitChangeRequest true "Change submission request"
// @Success      201 {object} dto.Response{data=reviewapp.ChangeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /changes [post]
func (h *ChangeHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	var req SubmitChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	factID, err := uuid.Parse(req.FactID)
	if err != nil {
		h.BadRequest(c, "Invalid fact ID format")
		return
	}

	appReq := reviewapp.SubmitChangeRequest{
		FactID: factID,
		Proposed: scorecard.ProposedValues{
			Actual:   req.Actual,
			Target:   req.Target,
			Forecast: req.Forecast,
		},
		SubmittedBy: userID,
	}
	if req.BatchID != nil && *req.BatchID != "" {
		batchID, err := uuid.Parse(*req.BatchID)
		if err != nil {
			h.BadRequest(c, "Invalid batch ID format")
			return
		}
		appReq.BatchID = &batchID
	}
	// Batch-originated submissions are notified once at batch resolution,
	// not per child change.
	appReq.NotifyOwner = appReq.BatchID == nil
	if req.NotifyOwner != nil {
		appReq.NotifyOwner = *req.NotifyOwner
	}

	change, err := h.ledger.Submit(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, change)
}

// Approve godoc
// @Summary      Approve a pending change
// @Description  Approve a pending change, apply its values to the fact and recompute statuses.
// @Tags         changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Reviewing user ID" format(uuid)
// @Param        id path string true "Change ID" format(uuid)
// @Param        request body ApproveChangeRequest false "Approval options"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /changes/{id}/approve [post]
func (h *ChangeHandler) Approve(c *gin.Context) {
	reviewer, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	changeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid change ID format")
		return
	}

	var req ApproveChangeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	if err := h.ledger.Approve(c.Request.Context(), changeID, reviewer, req.SuppressEmail); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Reject godoc
// @Summary      Reject a pending change
// @Description  Reject a pending change. A non-empty reason is required; the fact keeps its current values.
// @Tags         changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Reviewing user ID" format(uuid)
// @Param        id path string true "Change ID" format(uuid)
// @Param        request body ResolveChangeRequest true "Rejection with reason"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /changes/{id}/reject [post]
func (h *ChangeHandler) Reject(c *gin.Context) {
	reviewer, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	changeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid change ID format")
		return
	}

	var req ResolveChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.Reject(c.Request.Context(), changeID, reviewer, req.Reason, req.SuppressEmail); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetState godoc
// @Summary      Get the workflow state of a fact
// @Description  Report whether the fact's latest change is pending, approved or rejected.
// @Tags         changes
// @Accept       json
// @Produce      json
// @Param        fact_id path string true "Fact ID" format(uuid)
// @Success      200 {object} dto.Response{data=ChangeStateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facts/{fact_id}/change-state [get]
func (h *ChangeHandler) GetState(c *gin.Context) {
	factID, err := uuid.Parse(c.Param("fact_id"))
	if err != nil {
		h.BadRequest(c, "Invalid fact ID format")
		return
	}

	state, change, err := h.ledger.GetState(c.Request.Context(), factID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ChangeStateResponse{
		FactID: factID.String(),
		State:  string(state),
		Change: change,
	})
}

// HasPending godoc
// @Summary      Check for a pending change
// @Description  Report whether a pending change exists for the fact.
// @Tags         changes
// @Accept       json
// @Produce      json
// @Param        fact_id path string true "Fact ID" format(uuid)
// @Success      200 {object} dto.Response{data=map[string]bool}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facts/{fact_id}/pending [get]
func (h *ChangeHandler) HasPending(c *gin.Context) {
	factID, err := uuid.Parse(c.Param("fact_id"))
	if err != nil {
		h.BadRequest(c, "Invalid fact ID format")
		return
	}

	pending, err := h.ledger.HasPending(c.Request.Context(), factID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"pending": pending})
}
