package service

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
)

func sampleReport() model.StudentReport {
	total := 255
	return model.StudentReport{
		ID:           uuid.New(),
		StudentName:  "Nansubuga Mary",
		StudentNo:    "S2024-031",
		ClassName:    "P.5",
		Term:         "Term 2",
		Year:         2026,
		Template:     model.ReportTemplateStandard,
		Subjects:     `[{"name":"Mathematics","score":88,"grade":"A","remark":"Excellent"},{"name":"English","score":74,"grade":"B","remark":""}]`,
		TotalScore:   &total,
		OverallGrade: "A",
	}
}

func TestRenderReportHTMLStandard(t *testing.T) {
	html, err := renderReportHTML(sampleReport())
	if err != nil {
		t.Fatalf("renderReportHTML: %v", err)
	}

	for _, want := range []string{"Nansubuga Mary", "S2024-031", "P.5", "Mathematics", "88", "255"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
	if !strings.Contains(html, "TERMLY ACADEMIC REPORT") {
		t.Error("standard template heading not rendered")
	}
}

func TestRenderReportHTMLMissingFieldsUsePlaceholder(t *testing.T) {
	report := model.StudentReport{
		ID:          uuid.New(),
		StudentName: "Okello James",
		StudentNo:   "S2024-032",
		ClassName:   "P.5",
		Term:        "Term 2",
		Year:        2026,
		Template:    model.ReportTemplateStandard,
		Subjects:    `[{"name":"Science","grade":"","remark":""}]`,
	}

	html, err := renderReportHTML(report)
	if err != nil {
		t.Fatalf("renderReportHTML: %v", err)
	}
	if !strings.Contains(html, missingField) {
		t.Errorf("missing fields should render as %q", missingField)
	}
}

func TestRenderReportHTMLEscapesMarkup(t *testing.T) {
	report := sampleReport()
	report.TeacherRemark = `<script>alert("x")</script>`

	html, err := renderReportHTML(report)
	if err != nil {
		t.Fatalf("renderReportHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("remark markup should be escaped")
	}
}

func TestRenderReportHTMLECDTemplate(t *testing.T) {
	report := sampleReport()
	report.Template = model.ReportTemplateECD

	html, err := renderReportHTML(report)
	if err != nil {
		t.Fatalf("renderReportHTML: %v", err)
	}
	if !strings.Contains(html, "PROGRESS REPORT") {
		t.Error("ecd template heading not rendered")
	}
}

func TestBuildReportZip(t *testing.T) {
	first := sampleReport()
	second := sampleReport()
	second.StudentName = "Okello James"
	second.StudentNo = "S2024-032"

	archive, err := buildReportZip([]model.StudentReport{first, second})
	if err != nil {
		t.Fatalf("buildReportZip: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 archive entries, got %d", len(zr.File))
	}

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		if !strings.HasSuffix(f.Name, ".html") {
			t.Errorf("archive entry %q should be an html file", f.Name)
		}
	}
	if !names["Nansubuga_Mary_S2024-031.html"] {
		t.Errorf("expected sanitized entry name, got %v", names)
	}
}

func TestBuildCombinedHTMLPageBreaks(t *testing.T) {
	first := sampleReport()
	second := sampleReport()
	second.StudentName = "Okello James"

	document, err := buildCombinedHTML([]model.StudentReport{first, second})
	if err != nil {
		t.Fatalf("buildCombinedHTML: %v", err)
	}

	html := string(document)
	if got := strings.Count(html, "report-page"); got < 2 {
		t.Errorf("expected a page container per report, got %d", got)
	}
	if !strings.Contains(html, "Nansubuga Mary") || !strings.Contains(html, "Okello James") {
		t.Error("combined document missing a student's report")
	}
}

func TestReportFileNameSanitizesName(t *testing.T) {
	report := sampleReport()
	report.StudentName = "A/B: C"

	name := reportFileName(report)
	if strings.ContainsAny(name, "/:\\ ") {
		t.Errorf("file name %q contains unsafe characters", name)
	}
}
