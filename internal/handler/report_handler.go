package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/middleware"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/pagination"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportExportService
}

func NewReportHandler(reportService service.ReportExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		writers := middleware.RequireRole(
			workflow.RoleAdmin,
			workflow.RoleHeadTeacher,
			workflow.RoleStaff,
		)
		reports.POST("", writers, h.CreateReport)
		reports.GET("", middleware.RequireAnyRole(), h.ListReports)
		reports.GET("/export/zip", middleware.RequireAnyRole(), h.ExportZip)
		reports.GET("/export/combined", middleware.RequireAnyRole(), h.ExportCombined)
		reports.GET("/export/excel", middleware.RequireAnyRole(), h.ExportExcel)
	}
}

func reportFilterFromQuery(c *gin.Context) repository.ReportFilter {
	year, _ := strconv.Atoi(c.Query("year"))
	return repository.ReportFilter{
		ClassName: c.Query("class"),
		Term:      c.Query("term"),
		Year:      year,
	}
}

// CreateReport records a student's term report card
// @Summary      Create student report
// @Description  Records a report card with per-subject results for later batch export
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReportRequest  true  "Create Report Payload"
// @Success      201      {object}  response.Response{data=model.StudentReport}
// @Failure      400      {object}  response.Response
// @Router       /api/reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// ListReports returns the tenant's student reports
// @Summary      List student reports
// @Description  Retrieves a paginated list of reports, optionally filtered by class, term, and year
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        class  query     string  false  "Filter by class name"
// @Param        term   query     string  false  "Filter by term"
// @Param        year   query     int     false  "Filter by year"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	reports, total, err := h.reportService.ListReports(c.Request.Context(), actor.TenantID, reportFilterFromQuery(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// ExportZip downloads the filtered reports as one HTML file per student in a zip
// @Summary      Export reports as zip
// @Description  Renders each matching report to HTML and bundles the files into a zip archive
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/zip
// @Param        class  query  string  false  "Filter by class name"
// @Param        term   query  string  false  "Filter by term"
// @Param        year   query  int     false  "Filter by year"
// @Success      200    {file}  file
// @Failure      400    {object}  response.Response
// @Router       /api/reports/export/zip [get]
func (h *ReportHandler) ExportZip(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	archive, err := h.reportService.ExportZip(c.Request.Context(), actor.UserID, actor.TenantID, reportFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="reports.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// ExportCombined downloads the filtered reports as a single printable HTML document
// @Summary      Export reports as combined HTML
// @Description  Concatenates every matching report into one printable HTML document with page breaks
// @Tags         reports
// @Security     BearerAuth
// @Produce      text/html
// @Param        class  query  string  false  "Filter by class name"
// @Param        term   query  string  false  "Filter by term"
// @Param        year   query  int     false  "Filter by year"
// @Success      200    {file}  file
// @Failure      400    {object}  response.Response
// @Router       /api/reports/export/combined [get]
func (h *ReportHandler) ExportCombined(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	document, err := h.reportService.ExportCombined(c.Request.Context(), actor.UserID, actor.TenantID, reportFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="reports.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", document)
}

// ExportExcel downloads the filtered reports as an xlsx summary
// @Summary      Export reports as Excel
// @Description  Writes a one-row-per-student xlsx summary of the matching reports
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        class  query  string  false  "Filter by class name"
// @Param        term   query  string  false  "Filter by term"
// @Param        year   query  int     false  "Filter by year"
// @Success      200    {file}  file
// @Failure      400    {object}  response.Response
// @Router       /api/reports/export/excel [get]
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	workbook, err := h.reportService.ExportExcel(c.Request.Context(), actor.UserID, actor.TenantID, reportFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reports.xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
