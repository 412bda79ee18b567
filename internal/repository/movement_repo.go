package repository

import (
	"time"

	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	CreateTx(tx *gorm.DB, mv *model.StockMovement) error
	FindByIngredient(ingredientID uuid.UUID, limit int) ([]model.StockMovement, error)
	FindByOutlet(outletID uuid.UUID, limit int) ([]model.StockMovement, error)
	GetStockMovement(outletID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(outletID uuid.UUID) (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string  `json:"date"`
	Inbound  float64 `json:"inbound"`
	Outbound float64 `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalIngredients int64   `json:"total_ingredients"`
	TotalProducts    int64   `json:"total_products"`
	LowStockCount    int64   `json:"low_stock_count"`
	TotalValuation   float64 `json:"total_valuation"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) CreateTx(tx *gorm.DB, mv *model.StockMovement) error {
	return tx.Create(mv).Error
}

func (r *movementRepo) FindByIngredient(ingredientID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.Where("ingredient_id = ?", ingredientID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindByOutlet(outletID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.Where("outlet_id = ?", outletID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetStockMovement(outletID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Query untuk aggregate movements per hari
	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("outlet_id = ? AND created_at BETWEEN ? AND ?", outletID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *movementRepo) GetDashboardStats(outletID uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats

	r.db.Model(&model.Ingredient{}).Where("outlet_id = ?", outletID).Count(&stats.TotalIngredients)
	r.db.Model(&model.Product{}).Count(&stats.TotalProducts)
	r.db.Model(&model.Ingredient{}).
		Where("outlet_id = ? AND min_stock > 0 AND stock <= min_stock", outletID).
		Count(&stats.LowStockCount)

	// Ingredient valuation at weighted-average cost.
	r.db.Model(&model.Ingredient{}).
		Where("outlet_id = ?", outletID).
		Select("COALESCE(SUM(stock * avg_cost), 0)").
		Scan(&stats.TotalValuation)

	return &stats, nil
}
