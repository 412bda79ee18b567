package repository

import (
	"sibos-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(shift *model.Shift) error
	FindByID(id uuid.UUID) (*model.Shift, error)
	// FindOpenByOutlet returns the single open shift for an outlet, or a
	// gorm.ErrRecordNotFound when the register is closed.
	FindOpenByOutlet(outletID uuid.UUID) (*model.Shift, error)
	FindRecentByOutlet(outletID uuid.UUID, limit int) ([]model.Shift, error)
	Save(shift *model.Shift) error
	// LockOpenByOutlet locks the open shift row inside tx so checkout
	// commits serialize their running-total updates.
	LockOpenByOutlet(tx *gorm.DB, outletID uuid.UUID) (*model.Shift, error)
	SaveTx(tx *gorm.DB, shift *model.Shift) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db}
}

func (r *shiftRepo) Create(shift *model.Shift) error {
	return r.db.Create(shift).Error
}

func (r *shiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("User").First(&shift, "id = ?", id).Error
	return &shift, err
}

func (r *shiftRepo) FindOpenByOutlet(outletID uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Where("outlet_id = ? AND status = ?", outletID, model.ShiftOpen).First(&shift).Error
	return &shift, err
}

func (r *shiftRepo) FindRecentByOutlet(outletID uuid.UUID, limit int) ([]model.Shift, error) {
	var shifts []model.Shift
	q := r.db.Preload("User").Where("outlet_id = ?", outletID).Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Save(shift *model.Shift) error {
	return r.db.Save(shift).Error
}

func (r *shiftRepo) LockOpenByOutlet(tx *gorm.DB, outletID uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where("outlet_id = ? AND status = ?", outletID, model.ShiftOpen).
		First(&shift).Error
	return &shift, err
}

func (r *shiftRepo) SaveTx(tx *gorm.DB, shift *model.Shift) error {
	return tx.Save(shift).Error
}
