package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // OWNER, MANAGER, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleOwner   = "OWNER"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

// CanApprovePO reports whether a role code sits in the authorized approval
// tier for high-value purchase orders.
func CanApprovePO(roleCode string) bool {
	return roleCode == RoleOwner || roleCode == RoleManager
}

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Owner",
		Description: "Full access, approves high-value purchase orders",
	},
	{
		Code:        RoleManager,
		Name:        "Manager",
		Description: "Outlet management access, approves high-value purchase orders",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Register operations only",
	},
}
