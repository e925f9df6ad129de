package handler

import (
	"net/http"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/pagination"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdmissionHandler struct {
	admissionService service.AdmissionService
	tenantService    service.TenantService
}

func NewAdmissionHandler(admissionService service.AdmissionService, tenantService service.TenantService) *AdmissionHandler {
	return &AdmissionHandler{admissionService: admissionService, tenantService: tenantService}
}

func (h *AdmissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public application endpoint, addressed by tenant slug since the
	// applicant has no account.
	router.POST("/api/public/:slug/admissions", h.CreateApplication)

	admissions := router.Group("/api/admissions")
	{
		staff := middleware.RequireRole(
			workflow.RoleAdmin,
			workflow.RoleHeadTeacher,
			workflow.RoleDirector,
			workflow.RoleStaff,
		)
		admissions.GET("", staff, h.ListApplications)
		admissions.POST("/verify", staff, h.VerifyApplication)
	}
}

// CreateApplication registers an external admission application
// @Summary      Submit admission application
// @Description  Registers an application for the school identified by slug and returns its confirmation code
// @Tags         admissions
// @Accept       json
// @Produce      json
// @Param        slug     path      string                          true  "Tenant slug"
// @Param        payload  body      service.CreateAdmissionRequest  true  "Application Payload"
// @Success      201      {object}  response.Response{data=model.AdmissionApplication}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/public/{slug}/admissions [post]
func (h *AdmissionHandler) CreateApplication(c *gin.Context) {
	tenant, err := h.tenantService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "School not found"))
		return
	}

	var req service.CreateAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	application, err := h.admissionService.Create(c.Request.Context(), tenant.ID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, application))
}

type VerifyAdmissionRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyApplication confirms an applicant by confirmation code
// @Summary      Verify admission application
// @Description  Looks up an application by its confirmation code and marks it verified
// @Tags         admissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      VerifyAdmissionRequest  true  "Verify Payload"
// @Success      200      {object}  response.Response{data=model.AdmissionApplication}
// @Failure      400      {object}  response.Response
// @Router       /api/admissions/verify [post]
func (h *AdmissionHandler) VerifyApplication(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req VerifyAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	application, err := h.admissionService.Verify(c.Request.Context(), actor.TenantID, actor.UserID, req.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, application))
}

// ListApplications returns the tenant's admission applications
// @Summary      List admission applications
// @Description  Retrieves a paginated list of applications, optionally filtered by status
// @Tags         admissions
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (submitted, verified)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/admissions [get]
func (h *AdmissionHandler) ListApplications(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	applications, total, err := h.admissionService.List(c.Request.Context(), actor.TenantID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"applications": applications,
		"meta":         params.Meta(total),
	}))
}
