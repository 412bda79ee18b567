package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productPreloads are the association rows price/yield resolution needs.
var productPreloads = []string{
	"Recipe", "Variants", "WholesaleTiers",
	"BundleItems", "BundleItems.Member", "BundleItems.Member.Recipe",
	"OutletPrices", "ChannelPrices",
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	// LockBySKU loads and row-locks a product inside tx; used by the B2B
	// ship path which must hold the lock until the whole shipment commits.
	LockBySKU(tx *gorm.DB, sku string) (*model.Product, error)
	// LockByID/LockVariant row-lock a stock carrier inside tx. Deductions
	// must compute the new quantity from the locked row, bukan dari
	// snapshot yang dibaca sebelum transaksi.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	LockVariant(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock float64, updatedBy string) error
	UpdateVariantStock(tx *gorm.DB, id uuid.UUID, newStock float64) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) withPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range productPreloads {
		db = db.Preload(p)
	}
	return db
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.withPreloads(r.db).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.withPreloads(r.db).First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.withPreloads(r.db).First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) LockBySKU(tx *gorm.DB, sku string) (*model.Product, error) {
	var product model.Product
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) LockVariant(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&variant, "id = ?", id).Error
	return &variant, err
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock float64, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) UpdateVariantStock(tx *gorm.DB, id uuid.UUID, newStock float64) error {
	return tx.Model(&model.ProductVariant{}).
		Where("id = ?", id).
		Update("stock", newStock).Error
}
