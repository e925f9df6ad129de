package handler

import (
	"net/http"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/requisition-settings")
	{
		settings.GET("", middleware.RequireAnyRole(), h.GetSettings)
		settings.PUT("", middleware.RequireRole(workflow.RoleAdmin, workflow.RoleDirector), h.UpdateSettings)
	}
}

// GetSettings returns the tenant's workflow configuration
// @Summary      Get requisition settings
// @Description  Retrieves the tenant's approval workflow configuration, falling back to defaults when unset
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.RequisitionSettings}
// @Failure      500  {object}  response.Response
// @Router       /api/requisition-settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), actor.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateSettings replaces the tenant's workflow configuration
// @Summary      Update requisition settings
// @Description  Updates the approval level count, per-level roles, and amount thresholds for the tenant
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateSettingsRequest  true  "Update Settings Payload"
// @Success      200      {object}  response.Response{data=model.RequisitionSettings}
// @Failure      400      {object}  response.Response
// @Router       /api/requisition-settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), actor.UserID, actor.TenantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
