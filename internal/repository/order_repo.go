package repository

import (
	"time"

	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateTx writes the order inside the caller's transaction; orders are
	// never created outside the checkout/ship transactions.
	CreateTx(tx *gorm.DB, order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByOutlet(outletID uuid.UUID, limit int) ([]model.Order, error)
	FindByReferencePO(poID uuid.UUID) (*model.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error
	UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, status model.PaymentStatus, paidAt time.Time) error
	SalesTotal(outletID uuid.UUID, start, end time.Time) (float64, int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) CreateTx(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("Customer").First(&order, "id = ?", id).Error
	return &order, err
}

func (r *orderRepo) FindByOutlet(outletID uuid.UUID, limit int) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.Preload("Items").Where("outlet_id = ?", outletID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByReferencePO(poID uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, "reference_po_id = ?", poID).Error
	return &order, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, status model.PaymentStatus, paidAt time.Time) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"payment_status": status, "paid_at": paidAt}).Error
}

func (r *orderRepo) SalesTotal(outletID uuid.UUID, start, end time.Time) (float64, int64, error) {
	var total float64
	var count int64
	q := r.db.Model(&model.Order{}).
		Where("outlet_id = ? AND created_at BETWEEN ? AND ? AND status <> ?", outletID, start, end, model.OrderCancelled)
	if err := q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	err := q.Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	return total, count, err
}
