package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(s *model.Supplier) error
	FindAll() ([]model.Supplier, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	FindByCategory(category string) ([]model.Supplier, error)
	FindNetworkByOutlet(outletID uuid.UUID) (*model.Supplier, error)
	Update(s *model.Supplier) error

	CreateCatalogItem(item *model.SupplierCatalogItem) error
	FindCatalogBySKU(sku string) ([]model.SupplierCatalogItem, error)
	FindCatalogItem(supplierID uuid.UUID, sku string) (*model.SupplierCatalogItem, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(s *model.Supplier) error {
	return r.db.Create(s).Error
}

func (r *supplierRepo) FindAll() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.First(&s, "id = ?", id).Error
	return &s, err
}

func (r *supplierRepo) FindByCategory(category string) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.Where("category = ? AND is_active = ?", category, true).Find(&suppliers).Error
	return suppliers, err
}

// FindNetworkByOutlet locates the network supplier record representing the
// given outlet (seller side of the B2B protocol).
func (r *supplierRepo) FindNetworkByOutlet(outletID uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.Where("is_sibos_network = ? AND outlet_id = ?", true, outletID).First(&s).Error
	return &s, err
}

func (r *supplierRepo) Update(s *model.Supplier) error {
	return r.db.Save(s).Error
}

func (r *supplierRepo) CreateCatalogItem(item *model.SupplierCatalogItem) error {
	return r.db.Create(item).Error
}

func (r *supplierRepo) FindCatalogBySKU(sku string) ([]model.SupplierCatalogItem, error) {
	var items []model.SupplierCatalogItem
	err := r.db.Preload("Supplier").Where("sku = ?", sku).Find(&items).Error
	return items, err
}

func (r *supplierRepo) FindCatalogItem(supplierID uuid.UUID, sku string) (*model.SupplierCatalogItem, error) {
	var item model.SupplierCatalogItem
	err := r.db.Where("supplier_id = ? AND sku = ?", supplierID, sku).First(&item).Error
	return &item, err
}
