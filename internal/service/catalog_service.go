package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"sibos-pos/internal/catalog"
	"sibos-pos/internal/model"
	"sibos-pos/internal/repository"
	"sibos-pos/internal/unitconv"
	"sibos-pos/internal/ws"
	"sibos-pos/pkg/logger"
	"sibos-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductAvailability pairs a catalog entry with its live sellable yield.
type ProductAvailability struct {
	Product      model.Product   `json:"product"`
	Availability float64         `json:"availability"`
	Cogs         decimal.Decimal `json:"cogs"`
}

type CatalogService interface {
	CreateProduct(req *model.Product, userID string) error
	UpdateProduct(id uuid.UUID, req *model.Product, userID string) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	// GetProductsWithAvailability recomputes yield on every call; it is
	// never cached because ingredient stock moves independently.
	GetProductsWithAvailability(outletID uuid.UUID) ([]ProductAvailability, error)
	GetAvailability(productID, outletID uuid.UUID) (float64, error)

	CreateIngredient(req *model.Ingredient, userID string) error
	UpdateIngredient(id uuid.UUID, req *model.Ingredient, userID string) (*model.Ingredient, error)
	GetIngredients(outletID uuid.UUID) ([]model.Ingredient, error)
	GetIngredient(id uuid.UUID) (*model.Ingredient, error)

	// BuildSnapshot loads the stock ledger view yield and pricing work on.
	BuildSnapshot(outletID uuid.UUID) (catalog.StockSnapshot, error)
}

type catalogService struct {
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	wsHub          *ws.Hub
	log            *logrus.Entry
}

func NewCatalogService(pRepo repository.ProductRepository, iRepo repository.IngredientRepository, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo:    pRepo,
		ingredientRepo: iRepo,
		wsHub:          hub,
		log:            logger.WithComponent("catalog_service"),
	}
}

func firstValidationError(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	return nil
}

// validateRecipe rejects recipe rows whose unit cannot be converted to the
// referenced ingredient's native unit. Incompatible units are a hard error
// at authoring time, not a zero fallback.
func (s *catalogService) validateRecipe(rows []model.RecipeItem) error {
	for _, row := range rows {
		ing, err := s.ingredientRepo.FindByID(row.IngredientID)
		if err != nil {
			return fmt.Errorf("%w: recipe ingredient %s", model.ErrMissingEntity, row.IngredientID)
		}
		if !unitconv.Compatible(row.Unit, ing.Unit) {
			return fmt.Errorf("%w: recipe line %s is %s but ingredient is stocked in %s",
				model.ErrIncompatibleUnit, ing.Name, row.Unit, ing.Unit)
		}
	}
	return nil
}

func (s *catalogService) validateProductShape(req *model.Product) error {
	// A product resolves stock exactly one way; recipe plus manual stock,
	// or variants plus bundle, is a data corruption vector.
	if req.HasVariants && req.IsBundle {
		return errors.New("product cannot be both variant and bundle")
	}
	if len(req.Recipe) > 0 && req.Stock != 0 && !req.HasVariants {
		return errors.New("recipe product cannot also carry manual stock")
	}
	for _, cp := range req.ChannelPrices {
		if !model.ValidChannel(cp.Channel) {
			return fmt.Errorf("unknown channel %q", cp.Channel)
		}
	}
	return nil
}

func (s *catalogService) CreateProduct(req *model.Product, userID string) error {
	if err := firstValidationError(req); err != nil {
		return err
	}
	if err := s.validateProductShape(req); err != nil {
		return err
	}
	if err := s.validateRecipe(req.Recipe); err != nil {
		return err
	}

	// Cek duplikasi SKU
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("SKU already exists")
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.broadcast("product_created", map[string]interface{}{
		"id": req.ID, "sku": req.SKU, "name": req.Name,
	}, userID)
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, userID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrMissingEntity, id)
	}
	if err := s.validateProductShape(req); err != nil {
		return nil, err
	}
	if err := s.validateRecipe(req.Recipe); err != nil {
		return nil, err
	}

	req.ID = existing.ID
	req.CreatedAt = existing.CreatedAt
	req.CreatedBy = existing.CreatedBy
	req.UpdatedBy = userID
	if err := s.productRepo.Update(req); err != nil {
		return nil, err
	}

	s.broadcast("product_updated", map[string]interface{}{
		"id": req.ID, "sku": req.SKU, "name": req.Name,
	}, userID)
	return req, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	return s.productRepo.Delete(id)
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *catalogService) BuildSnapshot(outletID uuid.UUID) (catalog.StockSnapshot, error) {
	ings, err := s.ingredientRepo.FindByOutlet(outletID)
	if err != nil {
		return nil, err
	}
	snap := make(catalog.StockSnapshot, len(ings))
	for _, ing := range ings {
		snap[ing.ID] = catalog.IngredientInfo{Stock: ing.Stock, Unit: ing.Unit, AvgCost: ing.AvgCost}
	}
	return snap, nil
}

func (s *catalogService) GetProductsWithAvailability(outletID uuid.UUID) ([]ProductAvailability, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	snap, err := s.BuildSnapshot(outletID)
	if err != nil {
		return nil, err
	}
	out := make([]ProductAvailability, 0, len(products))
	for i := range products {
		p := &products[i]
		if !catalog.AvailableAtOutlet(p, outletID) {
			continue
		}
		out = append(out, ProductAvailability{
			Product:      *p,
			Availability: catalog.Availability(p, snap),
			Cogs:         catalog.DeriveCogs(p, snap),
		})
	}
	return out, nil
}

func (s *catalogService) GetAvailability(productID, outletID uuid.UUID) (float64, error) {
	p, err := s.productRepo.FindByID(productID)
	if err != nil {
		return 0, fmt.Errorf("%w: product %s", model.ErrMissingEntity, productID)
	}
	snap, err := s.BuildSnapshot(outletID)
	if err != nil {
		return 0, err
	}
	return catalog.Availability(p, snap), nil
}

func (s *catalogService) CreateIngredient(req *model.Ingredient, userID string) error {
	if err := firstValidationError(req); err != nil {
		return err
	}
	if unitconv.CategoryOf(req.Unit) == unitconv.Unknown {
		return fmt.Errorf("%w: unknown unit %q", model.ErrIncompatibleUnit, req.Unit)
	}
	for _, line := range req.Recipe {
		comp, err := s.ingredientRepo.FindByID(line.ComponentID)
		if err != nil {
			return fmt.Errorf("%w: recipe component %s", model.ErrMissingEntity, line.ComponentID)
		}
		if !unitconv.Compatible(line.Unit, comp.Unit) {
			return fmt.Errorf("%w: component %s is %s but recipe line uses %s",
				model.ErrIncompatibleUnit, comp.Name, comp.Unit, line.Unit)
		}
	}

	existing, _ := s.ingredientRepo.FindBySKU(req.OutletID, req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("SKU already exists at this outlet")
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	if err := s.ingredientRepo.Create(req); err != nil {
		return err
	}

	s.broadcast("ingredient_created", map[string]interface{}{
		"id": req.ID, "sku": req.SKU, "name": req.Name, "stock": req.Stock,
	}, userID)
	return nil
}

func (s *catalogService) UpdateIngredient(id uuid.UUID, req *model.Ingredient, userID string) (*model.Ingredient, error) {
	existing, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, id)
	}

	// Stock and cost basis only move through ledger operations, never
	// through a catalog edit.
	existing.Name = req.Name
	existing.Category = req.Category
	existing.MinStock = req.MinStock
	existing.SupplierID = req.SupplierID
	existing.UpdatedBy = userID
	if err := s.ingredientRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) GetIngredients(outletID uuid.UUID) ([]model.Ingredient, error) {
	return s.ingredientRepo.FindByOutlet(outletID)
}

func (s *catalogService) GetIngredient(id uuid.UUID) (*model.Ingredient, error) {
	return s.ingredientRepo.FindByID(id)
}

func (s *catalogService) broadcast(action string, entity map[string]interface{}, userID string) {
	go func() {
		payload := map[string]interface{}{
			"type":   "catalog_update",
			"action": action,
			"entity": entity,
			"user":   map[string]interface{}{"id": userID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
