package handler

import (
	"strconv"

	"sibos-pos/internal/model"
	"sibos-pos/internal/receipt"
	"sibos-pos/internal/repository"
	"sibos-pos/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MasterHandler serves the master data surfaces that are thin enough to sit
// directly on repositories: outlets, suppliers, customers, promotions,
// orders, the cash ledger, and business settings.
type MasterHandler struct {
	outletRepo    repository.OutletRepository
	supplierRepo  repository.SupplierRepository
	customerRepo  repository.CustomerRepository
	promotionRepo repository.PromotionRepository
	orderRepo     repository.OrderRepository
	cashRepo      repository.CashRepository
	settingsRepo  repository.SettingsRepository
	db            *gorm.DB // debt payment butuh transaksi lintas tabel
}

func NewMasterHandler(
	outletRepo repository.OutletRepository,
	supplierRepo repository.SupplierRepository,
	customerRepo repository.CustomerRepository,
	promotionRepo repository.PromotionRepository,
	orderRepo repository.OrderRepository,
	cashRepo repository.CashRepository,
	settingsRepo repository.SettingsRepository,
	db *gorm.DB,
) *MasterHandler {
	return &MasterHandler{
		outletRepo:    outletRepo,
		supplierRepo:  supplierRepo,
		customerRepo:  customerRepo,
		promotionRepo: promotionRepo,
		orderRepo:     orderRepo,
		cashRepo:      cashRepo,
		settingsRepo:  settingsRepo,
		db:            db,
	}
}

// ===== Outlets =====

func (h *MasterHandler) GetOutlets(c *fiber.Ctx) error {
	outlets, err := h.outletRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch outlets"})
	}
	return c.JSON(outlets)
}

func (h *MasterHandler) CreateOutlet(c *fiber.Ctx) error {
	var outlet model.Outlet
	if err := c.BodyParser(&outlet); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(outlet); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	outlet.CreatedBy = getUserID(c)
	if err := h.outletRepo.Create(&outlet); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create outlet"})
	}
	return c.Status(201).JSON(outlet)
}

func (h *MasterHandler) UpdateOutlet(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
	}
	outlet, err := h.outletRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Outlet not found"})
	}
	if err := c.BodyParser(outlet); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	outlet.ID = id
	outlet.UpdatedBy = getUserID(c)
	if err := h.outletRepo.Update(outlet); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update outlet"})
	}
	return c.JSON(outlet)
}

// ===== Suppliers =====

func (h *MasterHandler) GetSuppliers(c *fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		suppliers, err := h.supplierRepo.FindByCategory(category)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch suppliers"})
		}
		return c.JSON(suppliers)
	}
	suppliers, err := h.supplierRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch suppliers"})
	}
	return c.JSON(suppliers)
}

func (h *MasterHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	supplier, err := h.supplierRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Supplier not found"})
	}
	return c.JSON(supplier)
}

func (h *MasterHandler) CreateSupplier(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(supplier); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	// Network supplier wajib menunjuk outlet asalnya
	if supplier.IsSibosNetwork && supplier.OutletID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Network supplier requires outlet_id"})
	}
	supplier.CreatedBy = getUserID(c)
	if err := h.supplierRepo.Create(&supplier); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create supplier"})
	}
	return c.Status(201).JSON(supplier)
}

func (h *MasterHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	supplier, err := h.supplierRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Supplier not found"})
	}
	if err := c.BodyParser(supplier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	supplier.ID = id
	if supplier.PerformanceScore < 0 || supplier.PerformanceScore > 100 {
		return c.Status(400).JSON(fiber.Map{"error": "Performance score must be 0-100"})
	}
	supplier.UpdatedBy = getUserID(c)
	if err := h.supplierRepo.Update(supplier); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update supplier"})
	}
	return c.JSON(supplier)
}

func (h *MasterHandler) CreateCatalogItem(c *fiber.Ctx) error {
	supplierID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	if _, err := h.supplierRepo.FindByID(supplierID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Supplier not found"})
	}
	var item model.SupplierCatalogItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item.SupplierID = supplierID
	if errs := validator.ValidateStruct(item); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	item.CreatedBy = getUserID(c)
	if err := h.supplierRepo.CreateCatalogItem(&item); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create catalog item"})
	}
	return c.Status(201).JSON(item)
}

// ===== Customers =====

func (h *MasterHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.customerRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customers"})
	}
	return c.JSON(customers)
}

func (h *MasterHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.customerRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
	}
	return c.JSON(customer)
}

func (h *MasterHandler) CreateCustomer(c *fiber.Ctx) error {
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(customer); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	customer.DebtBalance = decimal.Zero
	customer.CreatedBy = getUserID(c)
	if err := h.customerRepo.Create(&customer); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create customer"})
	}
	return c.Status(201).JSON(customer)
}

func (h *MasterHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.customerRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
	}
	// DebtBalance hanya boleh berubah lewat checkout atau pembayaran hutang
	prevDebt := customer.DebtBalance
	if err := c.BodyParser(customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	customer.ID = id
	customer.DebtBalance = prevDebt
	customer.UpdatedBy = getUserID(c)
	if err := h.customerRepo.Update(customer); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update customer"})
	}
	return c.JSON(customer)
}

type debtPaymentRequest struct {
	Amount decimal.Decimal     `json:"amount"`
	Method model.PaymentMethod `json:"method"`
}

// PayDebt settles (part of) a customer's outstanding debt. The balance
// decrement and the cash ledger entry commit in one transaction.
// POST /api/v1/customers/:id/debt-payment
func (h *MasterHandler) PayDebt(c *fiber.Ctx) error {
	customerID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var req debtPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(400).JSON(fiber.Map{"error": "Amount must be positive"})
	}
	if req.Method == "" {
		req.Method = model.PayCash
	}
	if req.Method != model.PayCash && req.Method != model.PayTransfer && req.Method != model.PayQris {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid payment method"})
	}

	var customer *model.Customer
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		locked, err := h.customerRepo.LockByID(tx, customerID)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(locked.DebtBalance) {
			return fiber.NewError(400, "Payment exceeds outstanding debt")
		}
		locked.DebtBalance = locked.DebtBalance.Sub(req.Amount)
		locked.UpdatedBy = getUserID(c)
		if err := h.customerRepo.SaveTx(tx, locked); err != nil {
			return err
		}

		entry := model.CashEntry{
			OutletID:    outletID,
			Type:        model.CashIn,
			Category:    model.CashCategoryDebtPayment,
			Amount:      req.Amount,
			Method:      req.Method,
			Description: "Debt payment from " + locked.Name,
			RefType:     "customer",
			RefID:       &locked.ID,
		}
		entry.CreatedBy = getUserID(c)
		if err := h.cashRepo.CreateTx(tx, &entry); err != nil {
			return err
		}

		customer = locked
		return nil
	})
	if txErr != nil {
		if fe, ok := txErr.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		if txErr == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record debt payment"})
	}

	return c.JSON(fiber.Map{
		"message": "Debt payment recorded",
		"data":    customer,
	})
}

// ===== Promotions =====

func (h *MasterHandler) GetPromotions(c *fiber.Ctx) error {
	if c.Query("active") == "true" {
		promos, err := h.promotionRepo.FindActive()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch promotions"})
		}
		return c.JSON(promos)
	}
	promos, err := h.promotionRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch promotions"})
	}
	return c.JSON(promos)
}

func (h *MasterHandler) CreatePromotion(c *fiber.Ctx) error {
	var promo model.Promotion
	if err := c.BodyParser(&promo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(promo); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	promo.CreatedBy = getUserID(c)
	if err := h.promotionRepo.Create(&promo); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create promotion"})
	}
	return c.Status(201).JSON(promo)
}

func (h *MasterHandler) UpdatePromotion(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid promotion ID"})
	}
	promo, err := h.promotionRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Promotion not found"})
	}
	if err := c.BodyParser(promo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	promo.ID = id
	promo.UpdatedBy = getUserID(c)
	if err := h.promotionRepo.Update(promo); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update promotion"})
	}
	return c.JSON(promo)
}

func (h *MasterHandler) DeletePromotion(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid promotion ID"})
	}
	if err := h.promotionRepo.Delete(id); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete promotion"})
	}
	return c.JSON(fiber.Map{"message": "Promotion deleted"})
}

// ===== Orders =====

func (h *MasterHandler) GetOrders(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	orders, err := h.orderRepo.FindByOutlet(outletID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}
	return c.JSON(fiber.Map{"data": orders, "total": len(orders)})
}

func (h *MasterHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.orderRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.JSON(order)
}

// GetOrderReceipt renders an order as plain text for the receipt printer.
// GET /api/v1/orders/:id/receipt
func (h *MasterHandler) GetOrderReceipt(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.orderRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}
	outlet, err := h.outletRepo.FindByID(order.OutletID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch outlet"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(receipt.Format(order, outlet))
}

// MarkOrderServed flips a paid dine-in/take-away order to served.
// POST /api/v1/orders/:id/serve
func (h *MasterHandler) MarkOrderServed(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.orderRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}
	if order.Status != model.OrderPaid {
		return c.Status(409).JSON(fiber.Map{"error": "Only paid orders can be marked served"})
	}
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		return h.orderRepo.UpdateStatusTx(tx, id, model.OrderServed)
	})
	if txErr != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update order"})
	}
	return c.JSON(fiber.Map{"message": "Order served"})
}

// ===== Cash ledger =====

func (h *MasterHandler) GetCashEntries(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	entries, err := h.cashRepo.FindByOutlet(outletID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch cash entries"})
	}
	return c.JSON(fiber.Map{"data": entries, "total": len(entries)})
}

// ===== Business settings =====

func (h *MasterHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settingsRepo.Get()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch settings"})
	}
	return c.JSON(settings)
}

func (h *MasterHandler) UpdateSettings(c *fiber.Ctx) error {
	settings, err := h.settingsRepo.Get()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch settings"})
	}
	if err := c.BodyParser(settings); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if settings.TempoDurationDays <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "tempo_duration_days must be positive"})
	}
	if settings.ReorderScoreFloor < 0 || settings.ReorderScoreFloor > 100 ||
		settings.ReorderPreferredScore < 0 || settings.ReorderPreferredScore > 100 {
		return c.Status(400).JSON(fiber.Map{"error": "Score thresholds must be 0-100"})
	}
	settings.UpdatedBy = getUserID(c)
	if err := h.settingsRepo.Update(settings); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update settings"})
	}
	return c.JSON(settings)
}
