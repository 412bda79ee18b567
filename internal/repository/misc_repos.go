package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Smaller repositories that don't warrant their own file: outlets,
// customers, promotions, cash ledger, business settings.

type OutletRepository interface {
	Create(o *model.Outlet) error
	FindAll() ([]model.Outlet, error)
	FindByID(id uuid.UUID) (*model.Outlet, error)
	Update(o *model.Outlet) error
}

type outletRepo struct{ db *gorm.DB }

func NewOutletRepo(db *gorm.DB) OutletRepository { return &outletRepo{db} }

func (r *outletRepo) Create(o *model.Outlet) error { return r.db.Create(o).Error }

func (r *outletRepo) FindAll() ([]model.Outlet, error) {
	var outlets []model.Outlet
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&outlets).Error
	return outlets, err
}

func (r *outletRepo) FindByID(id uuid.UUID) (*model.Outlet, error) {
	var o model.Outlet
	err := r.db.First(&o, "id = ?", id).Error
	return &o, err
}

func (r *outletRepo) Update(o *model.Outlet) error { return r.db.Save(o).Error }

type CustomerRepository interface {
	Create(c *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	Update(c *model.Customer) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	SaveTx(tx *gorm.DB, c *model.Customer) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) CustomerRepository { return &customerRepo{db} }

func (r *customerRepo) Create(c *model.Customer) error { return r.db.Create(c).Error }

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) Update(c *model.Customer) error { return r.db.Save(c).Error }

func (r *customerRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) SaveTx(tx *gorm.DB, c *model.Customer) error { return tx.Save(c).Error }

type PromotionRepository interface {
	Create(p *model.Promotion) error
	FindAll() ([]model.Promotion, error)
	FindActive() ([]model.Promotion, error)
	FindByID(id uuid.UUID) (*model.Promotion, error)
	Update(p *model.Promotion) error
	Delete(id uuid.UUID) error
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepo(db *gorm.DB) PromotionRepository { return &promotionRepo{db} }

func (r *promotionRepo) Create(p *model.Promotion) error { return r.db.Create(p).Error }

func (r *promotionRepo) FindAll() ([]model.Promotion, error) {
	var promos []model.Promotion
	err := r.db.Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promotionRepo) FindActive() ([]model.Promotion, error) {
	var promos []model.Promotion
	err := r.db.Where("is_active = ?", true).Find(&promos).Error
	return promos, err
}

func (r *promotionRepo) FindByID(id uuid.UUID) (*model.Promotion, error) {
	var p model.Promotion
	err := r.db.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *promotionRepo) Update(p *model.Promotion) error { return r.db.Save(p).Error }

func (r *promotionRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Promotion{}, "id = ?", id).Error
}

type CashRepository interface {
	CreateTx(tx *gorm.DB, entry *model.CashEntry) error
	FindByOutlet(outletID uuid.UUID, limit int) ([]model.CashEntry, error)
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepo(db *gorm.DB) CashRepository { return &cashRepo{db} }

func (r *cashRepo) CreateTx(tx *gorm.DB, entry *model.CashEntry) error {
	return tx.Create(entry).Error
}

func (r *cashRepo) FindByOutlet(outletID uuid.UUID, limit int) ([]model.CashEntry, error) {
	var entries []model.CashEntry
	q := r.db.Where("outlet_id = ?", outletID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

type SettingsRepository interface {
	Get() (*model.BusinessSettings, error)
	Update(s *model.BusinessSettings) error
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) SettingsRepository { return &settingsRepo{db} }

// Get returns the single settings row, creating it with defaults when the
// database is fresh.
func (r *settingsRepo) Get() (*model.BusinessSettings, error) {
	var s model.BusinessSettings
	err := r.db.First(&s).Error
	if err == gorm.ErrRecordNotFound {
		s = model.BusinessSettings{}
		s.CreatedBy = "system"
		if err := r.db.Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	return &s, err
}

func (r *settingsRepo) Update(s *model.BusinessSettings) error { return r.db.Save(s).Error }
