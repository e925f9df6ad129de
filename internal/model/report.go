package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportTemplate enum constants
const (
	ReportTemplateStandard = "standard"
	ReportTemplateECD      = "ecd"
)

// StudentReport is one student's term report record, the unit of the batch
// export pipeline. Scores are stored as serialized subject rows so the
// export templates can render whatever subjects the school configured.
type StudentReport struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	StudentName   string `gorm:"type:varchar(255);not null" json:"student_name"`
	StudentNo     string `gorm:"type:varchar(50);not null" json:"student_no"`
	ClassName     string `gorm:"type:varchar(100);not null" json:"class_name"`
	Term          string `gorm:"type:varchar(50);not null" json:"term"`
	Year          int    `gorm:"not null" json:"year"`
	Template      string `gorm:"type:varchar(20);not null;default:'standard'" json:"template"` // standard, ecd

	Subjects      string `gorm:"type:jsonb;not null;default:'[]'" json:"subjects"` // [{"name","score","grade","remark"}]
	TotalScore    *int   `json:"total_score"`
	OverallGrade  string `gorm:"type:varchar(10)" json:"overall_grade"`
	TeacherRemark string `gorm:"type:text" json:"teacher_remark"`
	HeadRemark    string `gorm:"type:text" json:"head_remark"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectResult is one row of a StudentReport's Subjects payload
type SubjectResult struct {
	Name   string `json:"name"`
	Score  *int   `json:"score"`
	Grade  string `json:"grade"`
	Remark string `json:"remark"`
}
