package repository

import (
	"sibos-pos/internal/model"

	"gorm.io/gorm"
)

type PrivilegeRepository interface {
	FindByCode(code string) (*model.Privilege, error)
	FindByCodes(codes []string) ([]model.Privilege, error)
	FindAll() ([]model.Privilege, error)
	Create(privilege *model.Privilege) error
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindByCode(code string) (*model.Privilege, error) {
	var privilege model.Privilege
	if err := r.db.Where("code = ?", code).First(&privilege).Error; err != nil {
		return nil, err
	}
	return &privilege, nil
}

func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Where("code IN ?", codes).Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepo) Create(privilege *model.Privilege) error {
	return r.db.Create(privilege).Error
}

// SeedDefaults inserts any default privilege codes missing from the table.
// Codes ditambahkan di rilis baru ikut ter-seed di instalasi lama.
func (r *privilegeRepo) SeedDefaults() error {
	var existingCodes []string
	if err := r.db.Model(&model.Privilege{}).Pluck("code", &existingCodes).Error; err != nil {
		return err
	}
	known := make(map[string]bool, len(existingCodes))
	for _, code := range existingCodes {
		known[code] = true
	}
	var missing []model.Privilege
	for _, p := range model.DefaultPrivileges {
		if !known[p.Code] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return r.db.Create(&missing).Error
}
