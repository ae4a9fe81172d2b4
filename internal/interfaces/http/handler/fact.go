package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	scorecardapp "github.com/kpiboard/backend/internal/application/scorecard"
)

// FactHandler handles fact read and status endpoints
type FactHandler struct {
	BaseHandler
	queries    *scorecardapp.FactQueryService
	recomputer *scorecardapp.RecomputeService
}

// NewFactHandler creates a new FactHandler
func NewFactHandler(queries *scorecardapp.FactQueryService, recomputer *scorecardapp.RecomputeService) *FactHandler {
	return &FactHandler{queries: queries, recomputer: recomputer}
}

// GetByID godoc
// @Summary      Get fact by ID
// @Tags         facts
// @Accept       json
// @Produce      json
// @Param        id path string true "Fact ID" format(uuid)
// @Success      200 {object} dto.Response{data=scorecardapp.FactResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facts/{id} [get]
func (h *FactHandler) GetByID(c *gin.Context) {
	factID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fact ID format")
		return
	}

	fact, err := h.queries.GetFact(c.Request.Context(), factID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fact)
}

// ListPlanYear godoc
// @Summary      List facts for a plan-year
// @Description  List all active facts for one plan and year, ordered by period start date.
// @Tags         facts
// @Accept       json
// @Produce      json
// @Param        plan_id path string true "Plan ID" format(uuid)
// @Param        year path int true "Plan year"
// @Success      200 {object} dto.Response{data=[]scorecardapp.FactResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /plans/{plan_id}/years/{year}/facts [get]
func (h *FactHandler) ListPlanYear(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}

	facts, err := h.queries.ListPlanYear(c.Request.Context(), planID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, facts)
}

// GetHistory godoc
// @Summary      Get fact audit history
// @Description  Return the append-only audit trail for one fact, newest first.
// @Tags         facts
// @Accept       json
// @Produce      json
// @Param        id path string true "Fact ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]review.AuditEntry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facts/{id}/history [get]
func (h *FactHandler) GetHistory(c *gin.Context) {
	factID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fact ID format")
		return
	}

	history, err := h.queries.GetHistory(c.Request.Context(), factID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// Recompute godoc
// @Summary      Recompute plan-year statuses
// @Description  Re-evaluate the status of every fact for one plan-year in period order. Idempotent.
// @Tags         facts
// @Accept       json
// @Produce      json
// @Param        plan_id path string true "Plan ID" format(uuid)
// @Param        year path int true "Plan year"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /plans/{plan_id}/years/{year}/recompute [post]
func (h *FactHandler) Recompute(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}

	if err := h.recomputer.RecomputePlanYear(c.Request.Context(), planID, year); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
