package handler

import (
	"errors"
	"net/http"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/pagination"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TenantHandler struct {
	tenantService service.TenantService
	userService   service.UserService
}

func NewTenantHandler(tenantService service.TenantService, userService service.UserService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, userService: userService}
}

func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	// FOR DEVELOPMENT / FIRST-RUN ONLY: provisions a tenant together with
	// its first admin account, before any credentials exist.
	router.POST("/api/bootstrap", h.Bootstrap)

	tenants := router.Group("/api/tenants")
	{
		tenants.GET("", middleware.RequireRole(workflow.RoleAdmin), h.ListTenants)
		tenants.GET("/:id", middleware.RequireRole(workflow.RoleAdmin), h.GetTenant)
		tenants.DELETE("/:id", middleware.RequireAnyRole(), h.DeleteTenant)
	}
}

type BootstrapRequest struct {
	Tenant service.CreateTenantRequest `json:"tenant" binding:"required"`
	Admin  service.CreateUserRequest   `json:"admin" binding:"required"`
}

// Bootstrap provisions a tenant and its first admin user
// @Summary      Bootstrap tenant
// @Description  Creates a tenant and its initial admin account in one call; intended for first-run setup
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        payload  body      BootstrapRequest  true  "Bootstrap Payload"
// @Success      201      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/bootstrap [post]
func (h *TenantHandler) Bootstrap(c *gin.Context) {
	var req BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	req.Admin.Role = string(workflow.RoleAdmin)

	tenant, err := h.tenantService.Create(c.Request.Context(), req.Tenant)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	// Bootstrap runs unauthenticated; uuid.Nil marks the system as actor
	admin, err := h.userService.CreateUser(c.Request.Context(), uuid.Nil, tenant.ID, req.Admin)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Tenant created but admin setup failed: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, map[string]interface{}{
		"tenant": tenant,
		"admin":  admin,
	}))
}

// ListTenants returns all tenants
// @Summary      List tenants
// @Description  Retrieves a paginated list of registered tenants
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	params := pagination.Parse(c)

	tenants, total, err := h.tenantService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetTenant returns a single tenant
// @Summary      Get tenant
// @Description  Retrieves a tenant by ID
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=model.Tenant}
// @Failure      404  {object}  response.Response
// @Router       /api/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid tenant ID"))
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// DeleteTenant backs up and removes a tenant with all its data
// @Summary      Delete tenant
// @Description  Snapshots every tenant-scoped table into a backup row, then deletes the tenant's data, users, and the tenant itself
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=service.DeleteTenantResult}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/tenants/{id} [delete]
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid tenant ID"))
		return
	}

	result, err := h.tenantService.Delete(c.Request.Context(), actor, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
		case errors.Is(err, service.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case result != nil:
			// Backup committed but deletion failed; surface the backup ID
			// so the operation can be retried safely.
			c.JSON(http.StatusInternalServerError, response.ErrorWithData(http.StatusInternalServerError, err.Error(), result))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
