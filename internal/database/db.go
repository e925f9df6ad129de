package database

import (
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Tenant{},
		&model.TenantBackup{},
		&model.User{},
		&model.RefreshToken{},
		&model.Requisition{},
		&model.RequisitionApproval{},
		&model.RequisitionActivity{},
		&model.RequisitionSettings{},
		&model.AuditLog{},
		&model.StudentReport{},
		&model.AdmissionApplication{},
	)
	if err != nil {
		logger.WithModule("database").WithError(err).Warn("Failed to auto-migrate models")
	}

	return db, nil
}
