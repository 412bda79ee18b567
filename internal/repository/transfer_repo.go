package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferRepository interface {
	Create(t *model.StockTransfer) error
	FindByID(id uuid.UUID) (*model.StockTransfer, error)
	FindByOutlet(outletID uuid.UUID) ([]model.StockTransfer, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.StockTransfer, error)
	SaveTx(tx *gorm.DB, t *model.StockTransfer) error
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(t *model.StockTransfer) error {
	return r.db.Create(t).Error
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := r.db.Preload("Items").First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transferRepo) FindByOutlet(outletID uuid.UUID) ([]model.StockTransfer, error) {
	var transfers []model.StockTransfer
	err := r.db.Preload("Items").
		Where("source_outlet_id = ? OR target_outlet_id = ?", outletID, outletID).
		Order("created_at DESC").Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("stock_transfer_id = ?", id).Find(&t.Items).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) SaveTx(tx *gorm.DB, t *model.StockTransfer) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(t).Error
}
