package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type B2BRepository interface {
	CreateTx(tx *gorm.DB, req *model.B2BRequest) error
	FindByID(id uuid.UUID) (*model.B2BRequest, error)
	FindByPoID(poID uuid.UUID) (*model.B2BRequest, error)
	FindByTargetOutlet(outletID uuid.UUID, status model.B2BStatus) ([]model.B2BRequest, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.B2BRequest, error)
	SaveTx(tx *gorm.DB, req *model.B2BRequest) error
}

type b2bRepo struct {
	db *gorm.DB
}

func NewB2BRepo(db *gorm.DB) B2BRepository {
	return &b2bRepo{db}
}

func (r *b2bRepo) CreateTx(tx *gorm.DB, req *model.B2BRequest) error {
	return tx.Create(req).Error
}

func (r *b2bRepo) FindByID(id uuid.UUID) (*model.B2BRequest, error) {
	var req model.B2BRequest
	err := r.db.Preload("Items").First(&req, "id = ?", id).Error
	return &req, err
}

func (r *b2bRepo) FindByPoID(poID uuid.UUID) (*model.B2BRequest, error) {
	var req model.B2BRequest
	err := r.db.Preload("Items").First(&req, "original_po_id = ?", poID).Error
	return &req, err
}

func (r *b2bRepo) FindByTargetOutlet(outletID uuid.UUID, status model.B2BStatus) ([]model.B2BRequest, error) {
	var reqs []model.B2BRequest
	q := r.db.Preload("Items").Where("target_outlet_id = ?", outletID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *b2bRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.B2BRequest, error) {
	var req model.B2BRequest
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("b2b_request_id = ?", id).Find(&req.Items).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *b2bRepo) SaveTx(tx *gorm.DB, req *model.B2BRequest) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(req).Error
}
