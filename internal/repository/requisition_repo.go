package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequisitionFilter narrows tenant-scoped requisition listings
type RequisitionFilter struct {
	Status      string
	Type        string
	RequestedBy *uuid.UUID
	Page        int
	Limit       int
}

type RequisitionRepository interface {
	Create(ctx context.Context, req *model.Requisition) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error)
	// FindByIDForUpdate takes a row lock so concurrent workflow decisions on
	// the same requisition serialize. Only meaningful inside a transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error)
	FindByIDWithRelations(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error)
	List(ctx context.Context, tenantID uuid.UUID, filter RequisitionFilter) ([]model.Requisition, int64, error)
	Update(ctx context.Context, req *model.Requisition) error
	// NextRequisitionNo allocates the next sequence number under the given
	// prefix. Must run inside a transaction; an advisory lock on the prefix
	// serializes concurrent allocations.
	NextRequisitionNo(ctx context.Context, prefix string) (string, error)
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type requisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) RequisitionRepository {
	return &requisitionRepository{db: db}
}

func (r *requisitionRepository) Create(ctx context.Context, req *model.Requisition) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requisitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	if err := GetDB(ctx, r.db).First(&req, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requisitionRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requisitionRepository) FindByIDWithRelations(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Approvals.Approver").
		First(&req, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requisitionRepository) List(ctx context.Context, tenantID uuid.UUID, filter RequisitionFilter) ([]model.Requisition, int64, error) {
	var reqs []model.Requisition
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Requisition{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Requester").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *requisitionRepository) Update(ctx context.Context, req *model.Requisition) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requisitionRepository) NextRequisitionNo(ctx context.Context, prefix string) (string, error) {
	db := GetDB(ctx, r.db)

	// Advisory lock prevents concurrent duplicate numbers under one prefix
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	// Zero-padded suffixes sort lexicographically, so the string MAX is the
	// highest allocated number. Deleted rows (tenant teardown) leave gaps
	// behind; succeeding the maximum never re-allocates a surviving number
	// the way a row count would.
	var highest string
	if err := db.Model(&model.Requisition{}).
		Where("requisition_no LIKE ?", prefix+"%").
		Select("COALESCE(MAX(requisition_no), '')").
		Scan(&highest).Error; err != nil {
		return "", err
	}

	return nextRequisitionNo(prefix, highest), nil
}

// nextRequisitionNo computes the successor of the highest allocated number
// under a prefix; an empty or malformed highest starts the sequence at 1.
func nextRequisitionNo(prefix, highest string) string {
	seq := 0
	if strings.HasPrefix(highest, prefix) {
		if n, err := strconv.Atoi(highest[len(prefix):]); err == nil && n > 0 {
			seq = n
		}
	}
	return fmt.Sprintf("%s%05d", prefix, seq+1)
}

func (r *requisitionRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.Requisition{}).Error
}
