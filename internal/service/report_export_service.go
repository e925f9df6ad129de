package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Missing fields render as a visible placeholder rather than breaking the
// export of the whole batch.
const missingField = "N/A"

// --- DTOs ---

type CreateReportRequest struct {
	StudentName   string                `json:"student_name" binding:"required"`
	StudentNo     string                `json:"student_no" binding:"required"`
	ClassName     string                `json:"class_name" binding:"required"`
	Term          string                `json:"term" binding:"required"`
	Year          int                   `json:"year" binding:"required"`
	Template      string                `json:"template" binding:"omitempty,oneof=standard ecd"`
	Subjects      []model.SubjectResult `json:"subjects"`
	TotalScore    *int                  `json:"total_score"`
	OverallGrade  string                `json:"overall_grade"`
	TeacherRemark string                `json:"teacher_remark"`
	HeadRemark    string                `json:"head_remark"`
}

// --- Interface ---

type ReportExportService interface {
	CreateReport(ctx context.Context, tenantID uuid.UUID, req CreateReportRequest) (*model.StudentReport, error)
	ListReports(ctx context.Context, tenantID uuid.UUID, filter repository.ReportFilter, page, limit int) ([]model.StudentReport, int64, error)
	// ExportZip renders one HTML file per report and bundles them into a
	// zip archive.
	ExportZip(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error)
	// ExportCombined concatenates every rendered report into one printable
	// HTML document with page breaks between reports.
	ExportCombined(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error)
	// ExportExcel writes a one-row-per-student xlsx summary.
	ExportExcel(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error)
}

type reportExportService struct {
	repo      repository.ReportRepository
	auditRepo repository.AuditRepository
}

func NewReportExportService(repo repository.ReportRepository, auditRepo repository.AuditRepository) ReportExportService {
	return &reportExportService{repo: repo, auditRepo: auditRepo}
}

func (s *reportExportService) auditExport(ctx context.Context, actorID, tenantID uuid.UUID, format string, count int) {
	recordAudit(ctx, s.auditRepo, &model.AuditLog{
		TenantID: &tenantID,
		UserID:   &actorID,
		Action:   model.ActionExportReports,
		EntityID: tenantID.String(),
		Details:  fmt.Sprintf(`{"format":%q,"reports":%d}`, format, count),
	})
}

// --- Templates ---

var standardReportTmpl = template.Must(template.New("standard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.StudentName}} - {{.Term}} {{.Year}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
h1 { font-size: 18px; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #333; padding: 6px 10px; text-align: left; }
th { background: #eee; }
.remarks { margin-top: 16px; }
</style>
</head>
<body>
<h1>TERMLY ACADEMIC REPORT</h1>
<p><strong>Name:</strong> {{.StudentName}} &nbsp; <strong>Student No:</strong> {{.StudentNo}}</p>
<p><strong>Class:</strong> {{.ClassName}} &nbsp; <strong>Term:</strong> {{.Term}} &nbsp; <strong>Year:</strong> {{.Year}}</p>
<table>
<tr><th>Subject</th><th>Score</th><th>Grade</th><th>Remark</th></tr>
{{range .Subjects}}<tr><td>{{.Name}}</td><td>{{.Score}}</td><td>{{.Grade}}</td><td>{{.Remark}}</td></tr>
{{end}}</table>
<p><strong>Total:</strong> {{.TotalScore}} &nbsp; <strong>Overall Grade:</strong> {{.OverallGrade}}</p>
<div class="remarks">
<p><strong>Class Teacher:</strong> {{.TeacherRemark}}</p>
<p><strong>Head Teacher:</strong> {{.HeadRemark}}</p>
</div>
</body>
</html>
`))

var ecdReportTmpl = template.Must(template.New("ecd").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.StudentName}} - {{.Term}} {{.Year}}</title>
<style>
body { font-family: 'Comic Sans MS', cursive, sans-serif; margin: 24px; background: #fffbe9; }
h1 { font-size: 20px; text-align: center; color: #d35400; }
.card { border: 3px dashed #f39c12; border-radius: 12px; padding: 16px; }
.subject { margin: 8px 0; padding: 8px; background: #fdf2d0; border-radius: 8px; }
.remarks { margin-top: 16px; font-style: italic; }
</style>
</head>
<body>
<div class="card">
<h1>&#9733; {{.Term}} {{.Year}} PROGRESS REPORT &#9733;</h1>
<p><strong>{{.StudentName}}</strong> ({{.StudentNo}}) &mdash; {{.ClassName}}</p>
{{range .Subjects}}<div class="subject"><strong>{{.Name}}</strong>: {{.Grade}} &mdash; {{.Remark}}</div>
{{end}}<div class="remarks">
<p>Teacher says: {{.TeacherRemark}}</p>
<p>Head Teacher says: {{.HeadRemark}}</p>
</div>
</div>
</body>
</html>
`))

// reportView is the template payload; every field is pre-filled so missing
// data renders as the placeholder text.
type reportView struct {
	StudentName   string
	StudentNo     string
	ClassName     string
	Term          string
	Year          int
	Subjects      []subjectView
	TotalScore    string
	OverallGrade  string
	TeacherRemark string
	HeadRemark    string
}

type subjectView struct {
	Name   string
	Score  string
	Grade  string
	Remark string
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingField
	}
	return s
}

func newReportView(report model.StudentReport) reportView {
	view := reportView{
		StudentName:   orPlaceholder(report.StudentName),
		StudentNo:     orPlaceholder(report.StudentNo),
		ClassName:     orPlaceholder(report.ClassName),
		Term:          orPlaceholder(report.Term),
		Year:          report.Year,
		TotalScore:    missingField,
		OverallGrade:  orPlaceholder(report.OverallGrade),
		TeacherRemark: orPlaceholder(report.TeacherRemark),
		HeadRemark:    orPlaceholder(report.HeadRemark),
	}
	if report.TotalScore != nil {
		view.TotalScore = fmt.Sprintf("%d", *report.TotalScore)
	}

	var subjects []model.SubjectResult
	_ = json.Unmarshal([]byte(report.Subjects), &subjects)
	for _, subj := range subjects {
		sv := subjectView{
			Name:   orPlaceholder(subj.Name),
			Score:  missingField,
			Grade:  orPlaceholder(subj.Grade),
			Remark: orPlaceholder(subj.Remark),
		}
		if subj.Score != nil {
			sv.Score = fmt.Sprintf("%d", *subj.Score)
		}
		view.Subjects = append(view.Subjects, sv)
	}
	return view
}

// renderReportHTML renders one report with the template its record selects
func renderReportHTML(report model.StudentReport) (string, error) {
	tmpl := standardReportTmpl
	if report.Template == model.ReportTemplateECD {
		tmpl = ecdReportTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newReportView(report)); err != nil {
		return "", fmt.Errorf("failed to render report for %s: %w", report.StudentName, err)
	}
	return buf.String(), nil
}

// reportFileName builds a safe per-student file name inside the archive
func reportFileName(report model.StudentReport) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, report.StudentName)
	if name == "" {
		name = report.ID.String()
	}
	return fmt.Sprintf("%s_%s.html", name, report.StudentNo)
}

func buildReportZip(reports []model.StudentReport) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, report := range reports {
		html, err := renderReportHTML(report)
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(reportFileName(report))
		if err != nil {
			return nil, fmt.Errorf("failed to add archive entry: %w", err)
		}
		if _, err := w.Write([]byte(html)); err != nil {
			return nil, fmt.Errorf("failed to write archive entry: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func buildCombinedHTML(reports []model.StudentReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Batch Reports</title>\n")
	buf.WriteString("<style>.report-page { page-break-after: always; }</style></head><body>\n")
	for _, report := range reports {
		html, err := renderReportHTML(report)
		if err != nil {
			return nil, err
		}
		// Strip the outer document so each report nests as one printable page
		html = strings.TrimPrefix(html, "<!DOCTYPE html>\n")
		buf.WriteString("<div class=\"report-page\">\n")
		buf.WriteString(html)
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}

// --- Implementation ---

func (s *reportExportService) CreateReport(ctx context.Context, tenantID uuid.UUID, req CreateReportRequest) (*model.StudentReport, error) {
	if req.Template == "" {
		req.Template = model.ReportTemplateStandard
	}
	subjects, err := json.Marshal(req.Subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize subjects: %w", err)
	}

	report := &model.StudentReport{
		TenantID:      tenantID,
		StudentName:   req.StudentName,
		StudentNo:     req.StudentNo,
		ClassName:     req.ClassName,
		Term:          req.Term,
		Year:          req.Year,
		Template:      req.Template,
		Subjects:      string(subjects),
		TotalScore:    req.TotalScore,
		OverallGrade:  req.OverallGrade,
		TeacherRemark: req.TeacherRemark,
		HeadRemark:    req.HeadRemark,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

func (s *reportExportService) ListReports(ctx context.Context, tenantID uuid.UUID, filter repository.ReportFilter, page, limit int) ([]model.StudentReport, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, tenantID, filter, page, limit)
}

func (s *reportExportService) ExportZip(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error) {
	reports, err := s.repo.ListByFilter(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports match the filter")
	}

	archive, err := buildReportZip(reports)
	if err != nil {
		return nil, err
	}
	s.auditExport(ctx, actorID, tenantID, "zip", len(reports))
	return archive, nil
}

func (s *reportExportService) ExportCombined(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error) {
	reports, err := s.repo.ListByFilter(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports match the filter")
	}

	document, err := buildCombinedHTML(reports)
	if err != nil {
		return nil, err
	}
	s.auditExport(ctx, actorID, tenantID, "combined", len(reports))
	return document, nil
}

func (s *reportExportService) ExportExcel(ctx context.Context, actorID, tenantID uuid.UUID, filter repository.ReportFilter) ([]byte, error) {
	reports, err := s.repo.ListByFilter(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports match the filter")
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Student No", "Student Name", "Class", "Term", "Year", "Total Score", "Overall Grade"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, report := range reports {
		total := missingField
		if report.TotalScore != nil {
			total = fmt.Sprintf("%d", *report.TotalScore)
		}
		values := []interface{}{
			report.StudentNo, report.StudentName, report.ClassName,
			report.Term, report.Year, total, orPlaceholder(report.OverallGrade),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	s.auditExport(ctx, actorID, tenantID, "excel", len(reports))
	return buf.Bytes(), nil
}
