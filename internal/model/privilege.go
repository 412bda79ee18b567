package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "ingredient:view", Name: "View Ingredient"},
	{Code: "ingredient:create", Name: "Create Ingredient"},
	{Code: "ingredient:update", Name: "Update Ingredient"},
	// Register
	{Code: "pos:checkout", Name: "Checkout"},
	{Code: "shift:open", Name: "Open Shift"},
	{Code: "shift:close", Name: "Close Shift"},
	// Procurement
	{Code: "purchase:view", Name: "View Purchase Order"},
	{Code: "purchase:create", Name: "Create Purchase Order"},
	{Code: "purchase:approve", Name: "Approve Purchase Order"},
	{Code: "purchase:receive", Name: "Receive Purchase Order"},
	// B2B fulfillment (seller side)
	{Code: "b2b:view", Name: "View B2B Request"},
	{Code: "b2b:process", Name: "Process B2B Request"},
	{Code: "b2b:ship", Name: "Ship B2B Request"},
	// Stock
	{Code: "stock:adjust", Name: "Adjust Stock"},
	{Code: "stock:produce", Name: "Produce Semi-Finished"},
	{Code: "stock:transfer", Name: "Transfer Stock"},
	// Customers
	{Code: "customer:view", Name: "View Customer"},
	{Code: "customer:manage", Name: "Manage Customer"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
	// User management (OWNER only)
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
}
