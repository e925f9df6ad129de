package handler

import (
	"net/http"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/pagination"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequisitionHandler struct {
	requisitionService service.RequisitionService
}

func NewRequisitionHandler(requisitionService service.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{requisitionService: requisitionService}
}

func (h *RequisitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	requisitions := router.Group("/api/requisitions")
	{
		requisitions.POST("", middleware.RequireAnyRole(), h.CreateRequisition)
		requisitions.GET("", middleware.RequireAnyRole(), h.ListRequisitions)
		requisitions.GET("/:id", middleware.RequireAnyRole(), h.GetRequisition)
		requisitions.PUT("/:id", middleware.RequireAnyRole(), h.UpdateRequisition)
		requisitions.POST("/:id/submit", middleware.RequireAnyRole(), h.SubmitRequisition)
		requisitions.POST("/:id/cancel", middleware.RequireAnyRole(), h.CancelRequisition)
		requisitions.GET("/:id/activity", middleware.RequireAnyRole(), h.ListRequisitionActivity)

		approvers := middleware.RequireRole(
			workflow.RoleAdmin,
			workflow.RoleBursar,
			workflow.RoleHeadTeacher,
			workflow.RoleDirector,
		)
		requisitions.POST("/:id/approve", approvers, h.ApproveRequisition)
		requisitions.POST("/:id/reject", approvers, h.RejectRequisition)
	}
}

// CreateRequisition creates a draft requisition
// @Summary      Create requisition
// @Description  Creates a new requisition in draft status for the current tenant
// @Tags         requisitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequisitionRequest  true  "Create Requisition Payload"
// @Success      201      {object}  response.Response{data=model.Requisition}
// @Failure      400      {object}  response.Response
// @Router       /api/requisitions [post]
func (h *RequisitionHandler) CreateRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.Create(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, requisition))
}

// ListRequisitions returns a paginated list of the tenant's requisitions
// @Summary      List requisitions
// @Description  Retrieves a paginated list of requisitions, optionally filtered by status, type, or requester
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        status        query     string  false  "Filter by workflow status"
// @Param        type          query     string  false  "Filter by requisition type"
// @Param        requested_by  query     string  false  "Filter by requester user ID"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Number of items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /api/requisitions [get]
func (h *RequisitionHandler) ListRequisitions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := repository.RequisitionFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("requested_by"); raw != "" {
		requesterID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid requested_by filter"))
			return
		}
		filter.RequestedBy = &requesterID
	}

	requisitions, total, err := h.requisitionService.List(c.Request.Context(), actor, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requisitions": requisitions,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// GetRequisition returns a single requisition with its approval ladder
// @Summary      Get requisition
// @Description  Retrieves a requisition by ID including its approval records
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=model.Requisition}
// @Failure      404  {object}  response.Response
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) GetRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	requisition, err := h.requisitionService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// UpdateRequisition edits a draft requisition
// @Summary      Update requisition
// @Description  Updates an editable requisition; only drafts owned by the requester can change
// @Tags         requisitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Requisition ID"
// @Param        payload  body      service.UpdateRequisitionRequest  true  "Update Requisition Payload"
// @Success      200      {object}  response.Response{data=model.Requisition}
// @Failure      400      {object}  response.Response
// @Router       /api/requisitions/{id} [put]
func (h *RequisitionHandler) UpdateRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// SubmitRequisition moves a draft into the approval workflow
// @Summary      Submit requisition
// @Description  Submits a draft requisition, building its approval ladder from the tenant's workflow settings
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=model.Requisition}
// @Failure      400  {object}  response.Response
// @Router       /api/requisitions/{id}/submit [post]
func (h *RequisitionHandler) SubmitRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	requisition, err := h.requisitionService.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// ApproveRequisition records an approval decision at the current level
// @Summary      Approve requisition
// @Description  Approves the pending level, optionally adjusting the amount; the final level settles the requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Requisition ID"
// @Param        payload  body      service.ApproveRequisitionRequest  true  "Approve Requisition Payload"
// @Success      200      {object}  response.Response{data=model.Requisition}
// @Failure      400      {object}  response.Response
// @Router       /api/requisitions/{id}/approve [post]
func (h *RequisitionHandler) ApproveRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.ApproveRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.Approve(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// RejectRequisition rejects the requisition at the current level
// @Summary      Reject requisition
// @Description  Rejects the pending level with a mandatory reason, which settles the whole requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Requisition ID"
// @Param        payload  body      service.RejectRequisitionRequest  true  "Reject Requisition Payload"
// @Success      200      {object}  response.Response{data=model.Requisition}
// @Failure      400      {object}  response.Response
// @Router       /api/requisitions/{id}/reject [post]
func (h *RequisitionHandler) RejectRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.RejectRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.Reject(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// CancelRequisition withdraws a requisition before it settles
// @Summary      Cancel requisition
// @Description  Cancels a draft or in-progress requisition; only the requester or an admin may cancel
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=model.Requisition}
// @Failure      400  {object}  response.Response
// @Router       /api/requisitions/{id}/cancel [post]
func (h *RequisitionHandler) CancelRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	requisition, err := h.requisitionService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// ListRequisitionActivity returns the requisition's activity trail
// @Summary      List requisition activity
// @Description  Retrieves the chronological activity log for a requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Requisition ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      400    {object}  response.Response
// @Router       /api/requisitions/{id}/activity [get]
func (h *RequisitionHandler) ListRequisitionActivity(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	activity, total, err := h.requisitionService.ListActivity(c.Request.Context(), actor, c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"activity": activity,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}
