package service

import (
	"encoding/json"
	"fmt"
	"time"

	"sibos-pos/internal/model"
	"sibos-pos/internal/repository"
	"sibos-pos/internal/unitconv"
	"sibos-pos/internal/ws"
	"sibos-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// stockEpsilon absorbs float noise when checking the non-negative
// invariant on fractional quantities.
const stockEpsilon = 1e-9

// DeltaParams describes one ledger mutation. Delta is signed and expressed
// in the ingredient's native unit.
type DeltaParams struct {
	IngredientID uuid.UUID
	Delta        float64
	Type         model.MovementType
	// UnitCost, when set on a positive delta, re-costs the ingredient with
	// a stock-weighted average. Cost per native unit.
	UnitCost *decimal.Decimal
	RefType  string
	RefID    *uuid.UUID
	Note     string
	ActorID  string
}

type StockService interface {
	// ApplyDeltaTx mutates one ingredient's ledger row inside the caller's
	// transaction. A deduction that would drive stock negative fails the
	// call (and therefore the whole enclosing transaction) with
	// ErrInsufficientStock. Returns the new balance.
	ApplyDeltaTx(tx *gorm.DB, p DeltaParams) (float64, error)

	AdjustStock(ingredientID uuid.UUID, targetQty float64, note, actorID string) error
	Produce(ingredientID uuid.UUID, qty float64, actorID string) error

	CreateTransfer(req *model.StockTransfer, actorID string) error
	ShipTransfer(transferID uuid.UUID, actorID string) error
	ReceiveTransfer(transferID uuid.UUID, actorID string) error

	GetMovements(ingredientID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type stockService struct {
	ingredientRepo repository.IngredientRepository
	movementRepo   repository.MovementRepository
	transferRepo   repository.TransferRepository
	db             *gorm.DB
	wsHub          *ws.Hub
	log            *logrus.Entry
}

func NewStockService(
	ingRepo repository.IngredientRepository,
	mvRepo repository.MovementRepository,
	trRepo repository.TransferRepository,
	db *gorm.DB,
	hub *ws.Hub,
) StockService {
	return &stockService{
		ingredientRepo: ingRepo,
		movementRepo:   mvRepo,
		transferRepo:   trRepo,
		db:             db,
		wsHub:          hub,
		log:            logger.WithComponent("stock_service"),
	}
}

func (s *stockService) ApplyDeltaTx(tx *gorm.DB, p DeltaParams) (float64, error) {
	ing, err := s.ingredientRepo.LockByID(tx, p.IngredientID)
	if err != nil {
		return 0, fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, p.IngredientID)
	}

	newStock := ing.Stock + p.Delta
	if newStock < -stockEpsilon {
		return 0, fmt.Errorf("%w: %s has %.3f %s, need %.3f",
			model.ErrInsufficientStock, ing.Name, ing.Stock, ing.Unit, -p.Delta)
	}
	if newStock < 0 {
		newStock = 0
	}

	var newAvgCost *decimal.Decimal
	unitCost := ing.AvgCost
	if p.UnitCost != nil && p.Delta > 0 {
		// Stock-weighted moving average: restocks fold the received cost
		// into the existing basis instead of overwriting it.
		avg := weightedAverageCost(ing.Stock, ing.AvgCost, p.Delta, *p.UnitCost)
		newAvgCost = &avg
		unitCost = *p.UnitCost
	}

	if err := s.ingredientRepo.UpdateStockCost(tx, ing.ID, newStock, newAvgCost); err != nil {
		return 0, err
	}

	mv := &model.StockMovement{
		OutletID:     ing.OutletID,
		IngredientID: &ing.ID,
		Type:         p.Type,
		Quantity:     p.Delta,
		BalanceAfter: newStock,
		UnitCost:     unitCost,
		RefType:      p.RefType,
		RefID:        p.RefID,
		Note:         p.Note,
	}
	if p.ActorID != "" {
		mv.CreatedByUserID = &p.ActorID
		mv.CreatedBy = p.ActorID
	}
	if err := s.movementRepo.CreateTx(tx, mv); err != nil {
		return 0, err
	}
	return newStock, nil
}

// weightedAverageCost computes ((oldStock*oldAvg)+(recvQty*recvCost)) /
// (oldStock+recvQty). A fully depleted ledger takes the received cost
// as-is.
func weightedAverageCost(oldStock float64, oldAvg decimal.Decimal, recvQty float64, recvCost decimal.Decimal) decimal.Decimal {
	if oldStock <= 0 {
		return recvCost
	}
	oldValue := oldAvg.Mul(decimal.NewFromFloat(oldStock))
	newValue := recvCost.Mul(decimal.NewFromFloat(recvQty))
	return oldValue.Add(newValue).Div(decimal.NewFromFloat(oldStock + recvQty))
}

func (s *stockService) AdjustStock(ingredientID uuid.UUID, targetQty float64, note, actorID string) error {
	if targetQty < 0 {
		return fmt.Errorf("%w: adjustment target below zero", model.ErrInsufficientStock)
	}
	var balance float64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ing, err := s.ingredientRepo.LockByID(tx, ingredientID)
		if err != nil {
			return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, ingredientID)
		}
		balance, err = s.ApplyDeltaTx(tx, DeltaParams{
			IngredientID: ingredientID,
			Delta:        targetQty - ing.Stock,
			Type:         model.MovementAdjustment,
			Note:         note,
			ActorID:      actorID,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.broadcastStock("stock_adjusted", ingredientID, balance, actorID)
	return nil
}

// Produce manufactures qty units of a semi-finished ingredient, consuming
// its recipe components and re-costing the output from the batch cost.
func (s *stockService) Produce(ingredientID uuid.UUID, qty float64, actorID string) error {
	if qty <= 0 {
		return fmt.Errorf("production quantity must be positive")
	}
	output, err := s.ingredientRepo.FindByID(ingredientID)
	if err != nil {
		return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, ingredientID)
	}
	if !output.HasRecipe() {
		return fmt.Errorf("%s has no recipe, nothing to produce", output.Name)
	}

	var balance float64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		batchCost := decimal.Zero
		for _, line := range output.Recipe {
			comp, err := s.ingredientRepo.LockByID(tx, line.ComponentID)
			if err != nil {
				return fmt.Errorf("%w: component %s", model.ErrMissingEntity, line.ComponentID)
			}
			required, err := unitconv.Convert(line.Quantity*qty, line.Unit, comp.Unit)
			if err != nil {
				return fmt.Errorf("recipe line %s: %w", comp.Name, err)
			}
			if _, err := s.ApplyDeltaTx(tx, DeltaParams{
				IngredientID: comp.ID,
				Delta:        -required,
				Type:         model.MovementProductionUse,
				RefType:      "production",
				RefID:        &output.ID,
				ActorID:      actorID,
			}); err != nil {
				return err
			}
			batchCost = batchCost.Add(comp.AvgCost.Mul(decimal.NewFromFloat(required)))
		}

		unitCost := batchCost.Div(decimal.NewFromFloat(qty))
		var err error
		balance, err = s.ApplyDeltaTx(tx, DeltaParams{
			IngredientID: output.ID,
			Delta:        qty,
			Type:         model.MovementProduction,
			UnitCost:     &unitCost,
			RefType:      "production",
			ActorID:      actorID,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"ingredient": output.Name, "qty": qty}).Info("production booked")
	s.broadcastStock("production", ingredientID, balance, actorID)
	return nil
}

func (s *stockService) CreateTransfer(req *model.StockTransfer, actorID string) error {
	if req.SourceOutletID == req.TargetOutletID {
		return fmt.Errorf("transfer source and target outlets are the same")
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("transfer has no items")
	}
	req.Status = model.TransferDraft
	req.CreatedBy = actorID
	for i := range req.Items {
		ing, err := s.ingredientRepo.FindByID(req.Items[i].IngredientID)
		if err != nil {
			return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, req.Items[i].IngredientID)
		}
		req.Items[i].SKU = ing.SKU
		req.Items[i].Unit = ing.Unit
	}
	return s.transferRepo.Create(req)
}

func (s *stockService) ShipTransfer(transferID uuid.UUID, actorID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tr, err := s.transferRepo.LockByID(tx, transferID)
		if err != nil {
			return fmt.Errorf("%w: transfer %s", model.ErrMissingEntity, transferID)
		}
		if tr.Status != model.TransferDraft {
			return fmt.Errorf("%w: transfer is %s, expected draft", model.ErrInvalidTransition, tr.Status)
		}
		for i := range tr.Items {
			item := &tr.Items[i]
			ing, err := s.ingredientRepo.LockByID(tx, item.IngredientID)
			if err != nil {
				return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, item.IngredientID)
			}
			item.UnitCost = ing.AvgCost
			if _, err := s.ApplyDeltaTx(tx, DeltaParams{
				IngredientID: item.IngredientID,
				Delta:        -item.Quantity,
				Type:         model.MovementTransferOut,
				RefType:      "stock_transfer",
				RefID:        &tr.ID,
				ActorID:      actorID,
			}); err != nil {
				return err
			}
		}
		now := time.Now()
		tr.Status = model.TransferShipped
		tr.ShippedAt = &now
		tr.UpdatedBy = actorID
		return s.transferRepo.SaveTx(tx, tr)
	})
	if err != nil {
		return err
	}
	s.broadcastTransfer(transferID, "shipped", actorID)
	return nil
}

func (s *stockService) ReceiveTransfer(transferID uuid.UUID, actorID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tr, err := s.transferRepo.LockByID(tx, transferID)
		if err != nil {
			return fmt.Errorf("%w: transfer %s", model.ErrMissingEntity, transferID)
		}
		if tr.Status != model.TransferShipped {
			return fmt.Errorf("%w: transfer is %s, expected shipped", model.ErrInvalidTransition, tr.Status)
		}
		for _, item := range tr.Items {
			target, err := s.ingredientRepo.FindBySKU(tr.TargetOutletID, item.SKU)
			if err != nil {
				return fmt.Errorf("%w: sku %s at target outlet", model.ErrMissingEntity, item.SKU)
			}
			cost := item.UnitCost
			if _, err := s.ApplyDeltaTx(tx, DeltaParams{
				IngredientID: target.ID,
				Delta:        item.Quantity,
				Type:         model.MovementTransferIn,
				UnitCost:     &cost,
				RefType:      "stock_transfer",
				RefID:        &tr.ID,
				ActorID:      actorID,
			}); err != nil {
				return err
			}
		}
		now := time.Now()
		tr.Status = model.TransferReceived
		tr.ReceivedAt = &now
		tr.UpdatedBy = actorID
		return s.transferRepo.SaveTx(tx, tr)
	})
	if err != nil {
		return err
	}
	s.broadcastTransfer(transferID, "received", actorID)
	return nil
}

func (s *stockService) GetMovements(ingredientID uuid.UUID, limit int) ([]model.StockMovement, error) {
	return s.movementRepo.FindByIngredient(ingredientID, limit)
}

func (s *stockService) broadcastStock(action string, ingredientID uuid.UUID, balance float64, actorID string) {
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"ingredient": map[string]interface{}{
				"id":        ingredientID,
				"new_stock": balance,
			},
			"user": map[string]interface{}{"id": actorID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}

func (s *stockService) broadcastTransfer(transferID uuid.UUID, action string, actorID string) {
	go func() {
		payload := map[string]interface{}{
			"type":     "transfer_update",
			"action":   action,
			"transfer": map[string]interface{}{"id": transferID},
			"user":     map[string]interface{}{"id": actorID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
