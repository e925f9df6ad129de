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
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit-logs")
	{
		audit.GET("", middleware.RequireRole(workflow.RoleAdmin, workflow.RoleDirector), h.GetAuditLogs)
	}
}

// GetAuditLogs returns the tenant's audit trail
// @Summary      List audit logs
// @Description  Retrieves a paginated audit trail of critical system changes, optionally filtered by action
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action  query     string  false  "Filter by action"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := repository.AuditFilter{
		Action: c.Query("action"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs": logs,
		"meta": params.Meta(total),
	}))
}
