package model

// Outlet is a physical store/branch. Semua stok, harga override, dan shift
// di-scope per outlet.
type Outlet struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
