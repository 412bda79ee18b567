package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sibos-pos/internal/handler"
	"sibos-pos/internal/middleware"
	"sibos-pos/internal/model"
	"sibos-pos/internal/repository"
	"sibos-pos/internal/service"
	"sibos-pos/internal/ws"
	"sibos-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Outlet{}, &model.Privilege{}, &model.Role{}, &model.User{},
		&model.Ingredient{}, &model.IngredientRecipeItem{},
		&model.Product{}, &model.RecipeItem{}, &model.ProductVariant{},
		&model.WholesaleTier{}, &model.BundleItem{},
		&model.ProductOutletPrice{}, &model.ProductChannelPrice{},
		&model.Supplier{}, &model.SupplierCatalogItem{},
		&model.Customer{}, &model.Promotion{},
		&model.Order{}, &model.OrderItem{},
		&model.Shift{}, &model.CashEntry{},
		&model.StockMovement{}, &model.StockTransfer{}, &model.StockTransferItem{},
		&model.PurchaseOrder{}, &model.PurchaseOrderItem{},
		&model.PurchaseRequest{}, &model.PurchaseRequestItem{},
		&model.B2BRequest{}, &model.B2BRequestItem{},
		&model.BusinessSettings{},
	)

	// 3. Seed privileges, roles, owner account, outlet, settings
	seedDefaults(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	outletRepo := repository.NewOutletRepo(db)
	productRepo := repository.NewProductRepo(db)
	ingredientRepo := repository.NewIngredientRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	promotionRepo := repository.NewPromotionRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	cashRepo := repository.NewCashRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	poRepo := repository.NewPurchaseOrderRepo(db)
	b2bRepo := repository.NewB2BRepo(db)

	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	stockService := service.NewStockService(ingredientRepo, movementRepo, transferRepo, db, wsHub)
	catalogService := service.NewCatalogService(productRepo, ingredientRepo, wsHub)
	cartService := service.NewCartService(
		productRepo, ingredientRepo, promotionRepo, customerRepo,
		orderRepo, shiftRepo, cashRepo, stockService, db, wsHub,
	)
	procurementService := service.NewProcurementService(
		poRepo, b2bRepo, supplierRepo, ingredientRepo,
		orderRepo, cashRepo, settingsRepo, stockService, db, wsHub,
	)
	b2bService := service.NewB2BService(
		b2bRepo, poRepo, productRepo, orderRepo, movementRepo, cashRepo, db, wsHub,
	)
	rankingService := service.NewRankingService(ingredientRepo, supplierRepo, settingsRepo, procurementService)
	shiftService := service.NewShiftService(shiftRepo, userRepo, db, wsHub)
	dashService := service.NewDashboardService(movementRepo, orderRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)
	invHandler := handler.NewInventoryHandler(catalogService, stockService)
	posHandler := handler.NewPOSHandler(cartService)
	procHandler := handler.NewProcurementHandler(procurementService, rankingService)
	b2bHandler := handler.NewB2BHandler(b2bService)
	shiftHandler := handler.NewShiftHandler(shiftService)
	dashHandler := handler.NewDashboardHandler(dashService)
	masterHandler := handler.NewMasterHandler(
		outletRepo, supplierRepo, customerRepo, promotionRepo,
		orderRepo, cashRepo, settingsRepo, db,
	)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "SIBOS POS v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)
	protected.Get("/dashboard/sales-today", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesToday)

	// Catalog: products
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Get("/products/:id/availability", invHandler.GetAvailability)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), invHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), invHandler.DeleteProduct)

	// Catalog: ingredients + stock operations
	protected.Get("/ingredients", invHandler.GetIngredients)
	protected.Post("/ingredients", middleware.RequirePrivilege("ingredient:create"), invHandler.CreateIngredient)
	protected.Put("/ingredients/:id", middleware.RequirePrivilege("ingredient:update"), invHandler.UpdateIngredient)
	protected.Post("/ingredients/:id/adjust", middleware.RequirePrivilege("stock:adjust"), invHandler.AdjustStock)
	protected.Post("/ingredients/:id/produce", middleware.RequirePrivilege("stock:produce"), invHandler.Produce)
	protected.Get("/ingredients/:id/movements", invHandler.GetMovements)
	protected.Get("/ingredients/:id/supplier-options", middleware.RequirePrivilege("purchase:view"), procHandler.GetSupplierOptions)

	// Stock transfers
	protected.Post("/transfers", middleware.RequirePrivilege("stock:transfer"), invHandler.CreateTransfer)
	protected.Post("/transfers/:id/ship", middleware.RequirePrivilege("stock:transfer"), invHandler.ShipTransfer)
	protected.Post("/transfers/:id/receive", middleware.RequirePrivilege("stock:transfer"), invHandler.ReceiveTransfer)

	// Register / POS
	pos := protected.Group("/pos/sessions")
	pos.Post("/", posHandler.CreateSession)
	pos.Get("/:id", posHandler.GetSession)
	pos.Post("/:id/items", posHandler.AddItem)
	pos.Post("/:id/custom-items", posHandler.AddCustomItem)
	pos.Put("/:id/lines/:lineId", posHandler.UpdateLine)
	pos.Delete("/:id/lines/:lineId", posHandler.RemoveLine)
	pos.Put("/:id/customer", posHandler.SetCustomer)
	pos.Post("/:id/checkout", middleware.RequirePrivilege("pos:checkout"), posHandler.Checkout)

	// Shifts (literal routes didaftarkan sebelum /:id)
	protected.Post("/shifts/open", middleware.RequirePrivilege("shift:open"), shiftHandler.Open)
	protected.Get("/shifts/open", shiftHandler.GetOpen)
	protected.Get("/shifts", shiftHandler.GetShifts)
	protected.Get("/shifts/:id", shiftHandler.GetShift)
	protected.Post("/shifts/:id/close", middleware.RequirePrivilege("shift:close"), shiftHandler.Close)

	// Procurement: purchase orders
	po := protected.Group("/purchase-orders")
	po.Get("/", middleware.RequirePrivilege("purchase:view"), procHandler.ListPOs)
	po.Post("/", middleware.RequirePrivilege("purchase:create"), procHandler.CreatePO)
	po.Get("/:id", middleware.RequirePrivilege("purchase:view"), procHandler.GetPO)
	po.Post("/:id/submit", middleware.RequirePrivilege("purchase:create"), procHandler.Submit)
	po.Post("/:id/approve", middleware.RequirePrivilege("purchase:approve"), procHandler.Approve)
	po.Post("/:id/reject", middleware.RequirePrivilege("purchase:approve"), procHandler.Reject)
	po.Post("/:id/cancel", middleware.RequirePrivilege("purchase:create"), procHandler.Cancel)
	po.Post("/:id/receive", middleware.RequirePrivilege("purchase:receive"), procHandler.Receive)

	// Procurement: purchase requests + auto-reorder
	pr := protected.Group("/purchase-requests")
	pr.Get("/", middleware.RequirePrivilege("purchase:view"), procHandler.ListRequests)
	pr.Post("/", middleware.RequirePrivilege("purchase:create"), procHandler.CreateRequest)
	pr.Post("/:id/approve", middleware.RequirePrivilege("purchase:approve"), procHandler.ApproveRequest)
	pr.Post("/:id/reject", middleware.RequirePrivilege("purchase:approve"), procHandler.RejectRequest)
	protected.Post("/procurement/auto-reorder", middleware.RequirePrivilege("purchase:create"), procHandler.AutoReorder)

	// B2B fulfillment (seller side)
	b2b := protected.Group("/b2b/requests")
	b2b.Get("/", middleware.RequirePrivilege("b2b:view"), b2bHandler.ListIncoming)
	b2b.Get("/:id", middleware.RequirePrivilege("b2b:view"), b2bHandler.GetRequest)
	b2b.Post("/:id/accept", middleware.RequirePrivilege("b2b:process"), b2bHandler.Accept)
	b2b.Post("/:id/negotiate", middleware.RequirePrivilege("b2b:process"), b2bHandler.Negotiate)
	b2b.Post("/:id/ship", middleware.RequirePrivilege("b2b:ship"), b2bHandler.Ship)
	b2b.Post("/:id/reject", middleware.RequirePrivilege("b2b:process"), b2bHandler.Reject)
	b2b.Post("/:id/settle", middleware.RequirePrivilege("b2b:process"), b2bHandler.SettlePayment)

	// Master data
	protected.Get("/outlets", masterHandler.GetOutlets)
	protected.Post("/outlets", middleware.RequirePrivilege("user:create"), masterHandler.CreateOutlet)
	protected.Put("/outlets/:id", middleware.RequirePrivilege("user:update"), masterHandler.UpdateOutlet)

	protected.Get("/suppliers", middleware.RequirePrivilege("purchase:view"), masterHandler.GetSuppliers)
	protected.Get("/suppliers/:id", middleware.RequirePrivilege("purchase:view"), masterHandler.GetSupplier)
	protected.Post("/suppliers", middleware.RequirePrivilege("purchase:create"), masterHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege("purchase:create"), masterHandler.UpdateSupplier)
	protected.Post("/suppliers/:id/catalog", middleware.RequirePrivilege("purchase:create"), masterHandler.CreateCatalogItem)

	protected.Get("/customers", middleware.RequirePrivilege("customer:view"), masterHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege("customer:view"), masterHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege("customer:manage"), masterHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege("customer:manage"), masterHandler.UpdateCustomer)
	protected.Post("/customers/:id/debt-payment", middleware.RequirePrivilege("customer:manage"), masterHandler.PayDebt)

	protected.Get("/promotions", masterHandler.GetPromotions)
	protected.Post("/promotions", middleware.RequirePrivilege("product:update"), masterHandler.CreatePromotion)
	protected.Put("/promotions/:id", middleware.RequirePrivilege("product:update"), masterHandler.UpdatePromotion)
	protected.Delete("/promotions/:id", middleware.RequirePrivilege("product:update"), masterHandler.DeletePromotion)

	protected.Get("/orders", masterHandler.GetOrders)
	protected.Get("/orders/:id", masterHandler.GetOrder)
	protected.Get("/orders/:id/receipt", masterHandler.GetOrderReceipt)
	protected.Post("/orders/:id/serve", masterHandler.MarkOrderServed)

	protected.Get("/cash-entries", middleware.RequirePrivilege("dashboard:view"), masterHandler.GetCashEntries)

	protected.Get("/settings", masterHandler.GetSettings)
	protected.Put("/settings", middleware.RequireAnyPrivilege("user:update", "purchase:approve"), masterHandler.UpdateSettings)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles & Privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedDefaults creates the default privileges, roles, owner account, first
// outlet and the business settings row on a fresh database.
func seedDefaults(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	outletRepo := repository.NewOutletRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// OWNER gets everything
	ownerRole, err := roleRepo.FindByCode(model.RoleOwner)
	if err == nil && len(ownerRole.Privileges) == 0 {
		roleRepo.ReplacePrivileges(ownerRole, allPrivileges)
		log.Println("OWNER role assigned all privileges")
	}

	// MANAGER gets everything except user management
	managerRole, err := roleRepo.FindByCode(model.RoleManager)
	if err == nil && len(managerRole.Privileges) == 0 {
		managerPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			switch p.Code {
			case "user:create", "user:update", "user:delete", "user:update_privilege":
				continue
			}
			managerPrivileges = append(managerPrivileges, p)
		}
		roleRepo.ReplacePrivileges(managerRole, managerPrivileges)
		log.Println("MANAGER role assigned privileges")
	}

	// CASHIER gets register-floor privileges only
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierCodes := map[string]bool{
			"product:view": true, "ingredient:view": true,
			"pos:checkout": true, "shift:open": true, "shift:close": true,
			"customer:view": true, "dashboard:view": true,
		}
		cashierPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if cashierCodes[p.Code] {
				cashierPrivileges = append(cashierPrivileges, p)
			}
		}
		roleRepo.ReplacePrivileges(cashierRole, cashierPrivileges)
		log.Println("CASHIER role assigned privileges")
	}

	// First outlet
	outlets, err := outletRepo.FindAll()
	var mainOutlet *model.Outlet
	if err == nil && len(outlets) > 0 {
		mainOutlet = &outlets[0]
	} else {
		mainOutlet = &model.Outlet{Name: "Outlet Pusat", IsActive: true}
		mainOutlet.CreatedBy = "system"
		if err := outletRepo.Create(mainOutlet); err != nil {
			log.Printf("Warning: Failed to create default outlet: %v", err)
			mainOutlet = nil
		} else {
			log.Println("Default outlet created: Outlet Pusat")
		}
	}

	// Settings row (Get creates it with defaults when missing)
	if _, err := settingsRepo.Get(); err != nil {
		log.Printf("Warning: Failed to seed business settings: %v", err)
	}

	// Owner account
	if _, err := userRepo.FindByEmail("owner@example.com"); err != nil {
		ownerRole, roleErr := roleRepo.FindByCode(model.RoleOwner)
		if roleErr != nil {
			log.Printf("Warning: OWNER role missing, skipping owner seed: %v", roleErr)
			return
		}

		owner := &model.User{
			Email:      "owner@example.com",
			FullName:   "Business Owner",
			RoleID:     &ownerRole.ID,
			IsActive:   true,
			Privileges: ownerRole.Privileges,
		}
		if mainOutlet != nil {
			owner.OutletID = &mainOutlet.ID
		}
		owner.CreatedBy = "system"
		owner.UpdatedBy = "system"

		if err := owner.SetPassword("owner123"); err != nil {
			log.Printf("Warning: Failed to hash owner password: %v", err)
			return
		}
		if err := userRepo.Create(owner); err != nil {
			log.Printf("Warning: Failed to create owner user: %v", err)
		} else {
			log.Println("Owner user created: owner@example.com / owner123 (OWNER)")
		}
	}
}
