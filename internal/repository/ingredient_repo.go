package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IngredientRepository interface {
	Create(ing *model.Ingredient) error
	FindByID(id uuid.UUID) (*model.Ingredient, error)
	FindByOutlet(outletID uuid.UUID) ([]model.Ingredient, error)
	FindBySKU(outletID uuid.UUID, sku string) (*model.Ingredient, error)
	FindByIDs(ids []uuid.UUID) ([]model.Ingredient, error)
	FindLowStock(outletID uuid.UUID) ([]model.Ingredient, error)
	Update(ing *model.Ingredient) error
	// LockByID loads the row FOR UPDATE inside tx. Every ledger delta goes
	// through a lock first so concurrent writers serialize per ingredient.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Ingredient, error)
	UpdateStockCost(tx *gorm.DB, id uuid.UUID, newStock float64, newAvgCost *decimal.Decimal) error
}

type ingredientRepo struct {
	db *gorm.DB
}

func NewIngredientRepo(db *gorm.DB) IngredientRepository {
	return &ingredientRepo{db}
}

func (r *ingredientRepo) Create(ing *model.Ingredient) error {
	return r.db.Create(ing).Error
}

func (r *ingredientRepo) FindByID(id uuid.UUID) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.db.Preload("Supplier").Preload("Recipe").Preload("Recipe.Component").First(&ing, "id = ?", id).Error
	return &ing, err
}

func (r *ingredientRepo) FindByOutlet(outletID uuid.UUID) ([]model.Ingredient, error) {
	var ings []model.Ingredient
	err := r.db.Preload("Supplier").Where("outlet_id = ?", outletID).Order("name ASC").Find(&ings).Error
	return ings, err
}

func (r *ingredientRepo) FindBySKU(outletID uuid.UUID, sku string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.db.Where("outlet_id = ? AND sku = ?", outletID, sku).First(&ing).Error
	return &ing, err
}

func (r *ingredientRepo) FindByIDs(ids []uuid.UUID) ([]model.Ingredient, error) {
	var ings []model.Ingredient
	err := r.db.Where("id IN ?", ids).Find(&ings).Error
	return ings, err
}

func (r *ingredientRepo) FindLowStock(outletID uuid.UUID) ([]model.Ingredient, error) {
	var ings []model.Ingredient
	err := r.db.Preload("Supplier").
		Where("outlet_id = ? AND min_stock > 0 AND stock <= min_stock", outletID).
		Find(&ings).Error
	return ings, err
}

func (r *ingredientRepo) Update(ing *model.Ingredient) error {
	return r.db.Save(ing).Error
}

func (r *ingredientRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&ing, "id = ?", id).Error
	return &ing, err
}

func (r *ingredientRepo) UpdateStockCost(tx *gorm.DB, id uuid.UUID, newStock float64, newAvgCost *decimal.Decimal) error {
	updates := map[string]interface{}{"stock": newStock}
	if newAvgCost != nil {
		updates["avg_cost"] = *newAvgCost
	}
	return tx.Model(&model.Ingredient{}).Where("id = ?", id).Updates(updates).Error
}
