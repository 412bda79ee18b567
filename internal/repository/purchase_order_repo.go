package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(po *model.PurchaseOrder) error
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	FindByOutlet(outletID uuid.UUID, status model.POStatus) ([]model.PurchaseOrder, error)
	Save(po *model.PurchaseOrder) error
	SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error
	// LockByID loads the PO and its items FOR UPDATE inside tx. State
	// transitions always re-check status under the lock.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error

	CreateRequest(pr *model.PurchaseRequest) error
	FindRequestByID(id uuid.UUID) (*model.PurchaseRequest, error)
	FindRequestsByOutlet(outletID uuid.UUID) ([]model.PurchaseRequest, error)
	SaveRequest(pr *model.PurchaseRequest) error
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) Create(po *model.PurchaseOrder) error {
	return r.db.Create(po).Error
}

func (r *purchaseOrderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.Preload("Items").Preload("Items.Ingredient").Preload("Supplier").Preload("Outlet").
		First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseOrderRepo) FindByOutlet(outletID uuid.UUID, status model.POStatus) ([]model.PurchaseOrder, error) {
	var pos []model.PurchaseOrder
	q := r.db.Preload("Items").Preload("Supplier").Where("outlet_id = ?", outletID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&pos).Error
	return pos, err
}

func (r *purchaseOrderRepo) Save(po *model.PurchaseOrder) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(po).Error
}

func (r *purchaseOrderRepo) SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(po).Error
}

func (r *purchaseOrderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_order_id = ?", id).Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error {
	return tx.Save(item).Error
}

func (r *purchaseOrderRepo) CreateRequest(pr *model.PurchaseRequest) error {
	return r.db.Create(pr).Error
}

func (r *purchaseOrderRepo) FindRequestByID(id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	err := r.db.Preload("Items").First(&pr, "id = ?", id).Error
	return &pr, err
}

func (r *purchaseOrderRepo) FindRequestsByOutlet(outletID uuid.UUID) ([]model.PurchaseRequest, error) {
	var prs []model.PurchaseRequest
	err := r.db.Preload("Items").Where("outlet_id = ?", outletID).Order("created_at DESC").Find(&prs).Error
	return prs, err
}

func (r *purchaseOrderRepo) SaveRequest(pr *model.PurchaseRequest) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(pr).Error
}
