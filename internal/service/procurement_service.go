package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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

// ReceiveLine reports delivered quantity and landed unit cost for one PO
// line. Zero values fall back to the ordered quantity / estimated cost.
type ReceiveLine struct {
	ItemID           uuid.UUID       `json:"item_id" validate:"uuid_required"`
	ReceivedQuantity float64         `json:"received_quantity"`
	FinalCost        decimal.Decimal `json:"final_cost"`
}

type ReceiveParams struct {
	Lines         []ReceiveLine       `json:"lines"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=cash transfer tempo"`
}

type ProcurementService interface {
	CreatePO(req *model.PurchaseOrder, actorID uuid.UUID) error
	// Submit moves a draft into the lifecycle. Totals above the approval
	// threshold detour through pending_approval unless the submitter is
	// already in the approval tier.
	Submit(poID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error)
	Approve(poID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error)
	Reject(poID uuid.UUID, actorID uuid.UUID, roleCode string, note string) (*model.PurchaseOrder, error)
	Cancel(poID uuid.UUID, actorID uuid.UUID) (*model.PurchaseOrder, error)
	// Receive books goods in: stock and weighted-average cost per line,
	// the recomputed document total, payment and, for B2B orders, protocol
	// completion on the seller side. One transaction.
	Receive(poID uuid.UUID, p ReceiveParams, actorID uuid.UUID) (*model.PurchaseOrder, error)
	GetPO(poID uuid.UUID) (*model.PurchaseOrder, error)
	ListPOs(outletID uuid.UUID, status model.POStatus) ([]model.PurchaseOrder, error)

	CreateRequest(pr *model.PurchaseRequest, actorID uuid.UUID) error
	ApproveRequest(prID uuid.UUID, supplierID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error)
	RejectRequest(prID uuid.UUID, actorID uuid.UUID, roleCode string) error
	ListRequests(outletID uuid.UUID) ([]model.PurchaseRequest, error)
}

type procurementService struct {
	poRepo         repository.PurchaseOrderRepository
	b2bRepo        repository.B2BRepository
	supplierRepo   repository.SupplierRepository
	ingredientRepo repository.IngredientRepository
	orderRepo      repository.OrderRepository
	cashRepo       repository.CashRepository
	settingsRepo   repository.SettingsRepository
	stockService   StockService
	db             *gorm.DB
	wsHub          *ws.Hub
	log            *logrus.Entry
}

func NewProcurementService(
	poRepo repository.PurchaseOrderRepository,
	b2bRepo repository.B2BRepository,
	supplierRepo repository.SupplierRepository,
	ingredientRepo repository.IngredientRepository,
	orderRepo repository.OrderRepository,
	cashRepo repository.CashRepository,
	settingsRepo repository.SettingsRepository,
	stockService StockService,
	db *gorm.DB,
	hub *ws.Hub,
) ProcurementService {
	return &procurementService{
		poRepo:         poRepo,
		b2bRepo:        b2bRepo,
		supplierRepo:   supplierRepo,
		ingredientRepo: ingredientRepo,
		orderRepo:      orderRepo,
		cashRepo:       cashRepo,
		settingsRepo:   settingsRepo,
		stockService:   stockService,
		db:             db,
		wsHub:          hub,
		log:            logger.WithComponent("procurement_service"),
	}
}

func generatePONumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), suffix)
}

func (s *procurementService) CreatePO(req *model.PurchaseOrder, actorID uuid.UUID) error {
	if len(req.Items) == 0 {
		return errors.New("purchase order has no items")
	}
	supplier, err := s.supplierRepo.FindByID(req.SupplierID)
	if err != nil {
		return fmt.Errorf("%w: supplier %s", model.ErrMissingEntity, req.SupplierID)
	}
	if supplier.IsSibosNetwork && supplier.OutletID != nil && *supplier.OutletID == req.OutletID {
		return errors.New("outlet cannot order from itself")
	}

	for i := range req.Items {
		item := &req.Items[i]
		ing, err := s.ingredientRepo.FindByID(item.IngredientID)
		if err != nil {
			return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, item.IngredientID)
		}
		if item.Unit == "" {
			item.Unit = ing.Unit
		}
		if !unitconv.Compatible(item.Unit, ing.Unit) {
			return fmt.Errorf("%w: line %s ordered in %s but stocked in %s",
				model.ErrIncompatibleUnit, ing.Name, item.Unit, ing.Unit)
		}
		item.SKU = ing.SKU
		item.Name = ing.Name
	}

	req.PONumber = generatePONumber()
	req.Status = model.POStatusDraft
	req.IsB2B = supplier.IsSibosNetwork
	req.PaymentStatus = model.PaymentUnpaid
	req.CreatedByID = &actorID
	req.CreatedBy = actorID.String()
	req.RecalcTotal()
	return s.poRepo.Create(req)
}

func (s *procurementService) Submit(poID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	var result *model.PurchaseOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, poID)
		}
		if po.Status != model.POStatusDraft {
			return fmt.Errorf("%w: purchase order is %s, expected draft", model.ErrInvalidTransition, po.Status)
		}
		po.RecalcTotal()

		needsApproval := po.TotalEstimated.GreaterThan(settings.ApprovalThreshold) && !model.CanApprovePO(roleCode)
		if needsApproval {
			po.Status = model.POStatusPendingApproval
		} else if err := s.place(tx, po, actorID); err != nil {
			return err
		}
		po.UpdatedBy = actorID.String()
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastPO(result, "submitted", actorID)
	return result, nil
}

// place sends an approved/auto-approved PO to its supplier. Network
// suppliers get the seller-side mirror request; plain suppliers just move
// to ordered.
func (s *procurementService) place(tx *gorm.DB, po *model.PurchaseOrder, actorID uuid.UUID) error {
	if !po.IsB2B {
		if !po.CanTransition(model.POStatusOrdered) {
			return fmt.Errorf("%w: %s to ordered", model.ErrInvalidTransition, po.Status)
		}
		po.Status = model.POStatusOrdered
		return nil
	}

	supplier, err := s.supplierRepo.FindByID(po.SupplierID)
	if err != nil {
		return fmt.Errorf("%w: supplier %s", model.ErrMissingEntity, po.SupplierID)
	}
	if supplier.OutletID == nil {
		return fmt.Errorf("network supplier %s has no outlet binding", supplier.Name)
	}
	if !po.CanTransition(model.POStatusPending) {
		return fmt.Errorf("%w: %s to pending", model.ErrInvalidTransition, po.Status)
	}

	b2b := &model.B2BRequest{
		SourceOutletID: po.OutletID,
		TargetOutletID: *supplier.OutletID,
		OriginalPoID:   po.ID,
		Status:         model.B2BPending,
		PaymentStatus:  model.PaymentUnpaid,
	}
	b2b.CreatedBy = actorID.String()
	for _, item := range po.Items {
		b2b.Items = append(b2b.Items, model.B2BRequestItem{
			IngredientID: item.IngredientID,
			SKU:          item.SKU,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			Cost:         item.Cost,
		})
	}
	b2b.RecalcTotal()
	if err := s.b2bRepo.CreateTx(tx, b2b); err != nil {
		return err
	}

	po.Status = model.POStatusPending
	po.DistributorStatus = string(model.B2BPending)
	return nil
}

func (s *procurementService) Approve(poID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error) {
	if !model.CanApprovePO(roleCode) {
		return nil, model.ErrUnauthorizedApproval
	}
	var result *model.PurchaseOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, poID)
		}
		if po.Status != model.POStatusPendingApproval {
			return fmt.Errorf("%w: purchase order is %s, expected pending_approval", model.ErrInvalidTransition, po.Status)
		}
		if err := s.place(tx, po, actorID); err != nil {
			return err
		}
		now := time.Now()
		po.ApprovedBy = &actorID
		po.ApprovedAt = &now
		po.UpdatedBy = actorID.String()
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastPO(result, "approved", actorID)
	return result, nil
}

func (s *procurementService) Reject(poID uuid.UUID, actorID uuid.UUID, roleCode string, note string) (*model.PurchaseOrder, error) {
	if !model.CanApprovePO(roleCode) {
		return nil, model.ErrUnauthorizedApproval
	}
	var result *model.PurchaseOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, poID)
		}
		if !po.CanTransition(model.POStatusRejected) {
			return fmt.Errorf("%w: %s to rejected", model.ErrInvalidTransition, po.Status)
		}
		po.Status = model.POStatusRejected
		if note != "" {
			po.Note = note
		}
		po.UpdatedBy = actorID.String()
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastPO(result, "rejected", actorID)
	return result, nil
}

func (s *procurementService) Cancel(poID uuid.UUID, actorID uuid.UUID) (*model.PurchaseOrder, error) {
	var result *model.PurchaseOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, poID)
		}
		if !po.CanTransition(model.POStatusCancelled) {
			return fmt.Errorf("%w: %s to cancelled", model.ErrInvalidTransition, po.Status)
		}
		po.Status = model.POStatusCancelled
		po.UpdatedBy = actorID.String()
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastPO(result, "cancelled", actorID)
	return result, nil
}

func (s *procurementService) Receive(poID uuid.UUID, p ReceiveParams, actorID uuid.UUID) (*model.PurchaseOrder, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	byItem := make(map[uuid.UUID]ReceiveLine, len(p.Lines))
	for _, line := range p.Lines {
		byItem[line.ItemID] = line
	}

	var result *model.PurchaseOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, poID)
		}
		if !po.Receivable() {
			return fmt.Errorf("%w: purchase order is %s, expected ordered or shipped", model.ErrInvalidTransition, po.Status)
		}
		if po.IsB2B && po.Status != model.POStatusShipped {
			return fmt.Errorf("%w: B2B order must be shipped before receiving", model.ErrInvalidTransition)
		}

		for i := range po.Items {
			item := &po.Items[i]
			recvQty := item.Quantity
			finalCost := item.Cost
			if line, ok := byItem[item.ID]; ok {
				if line.ReceivedQuantity > 0 {
					recvQty = line.ReceivedQuantity
				}
				if line.FinalCost.IsPositive() {
					finalCost = line.FinalCost
				}
			}

			ing, err := s.ingredientRepo.FindByID(item.IngredientID)
			if err != nil {
				return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, item.IngredientID)
			}
			// Line quantity and cost are in the ordered unit; the ledger
			// works in the ingredient's native unit.
			nativeQty, err := unitconv.Convert(recvQty, item.Unit, ing.Unit)
			if err != nil {
				return fmt.Errorf("line %s: %w", item.Name, err)
			}
			perNative, err := unitconv.Convert(1, ing.Unit, item.Unit)
			if err != nil {
				return fmt.Errorf("line %s: %w", item.Name, err)
			}
			costPerNative := finalCost.Mul(decimal.NewFromFloat(perNative))

			if _, err := s.stockService.ApplyDeltaTx(tx, DeltaParams{
				IngredientID: item.IngredientID,
				Delta:        nativeQty,
				Type:         model.MovementPurchaseReceipt,
				UnitCost:     &costPerNative,
				RefType:      "purchase_order",
				RefID:        &po.ID,
				ActorID:      actorID.String(),
			}); err != nil {
				return err
			}

			item.ReceivedQuantity = recvQty
			item.FinalCost = finalCost
			if err := s.poRepo.SaveItemTx(tx, item); err != nil {
				return err
			}
		}

		now := time.Now()
		po.RecalcTotal()
		po.Status = model.POStatusReceived
		po.ReceivedAt = &now
		po.PaymentMethod = p.PaymentMethod
		po.UpdatedBy = actorID.String()

		switch p.PaymentMethod {
		case model.PayTempo:
			po.PaymentStatus = model.PaymentUnpaid
			due := now.AddDate(0, 0, settings.TempoDurationDays)
			po.PaymentDueAt = &due
		default:
			po.PaymentStatus = model.PaymentPaid
			entry := &model.CashEntry{
				OutletID:    po.OutletID,
				Type:        model.CashOut,
				Category:    model.CashCategoryPurchase,
				Amount:      po.TotalEstimated,
				Method:      p.PaymentMethod,
				Description: "purchase order " + po.PONumber,
				RefType:     "purchase_order",
				RefID:       &po.ID,
			}
			entry.CreatedBy = actorID.String()
			if err := s.cashRepo.CreateTx(tx, entry); err != nil {
				return err
			}
		}

		if po.IsB2B {
			if err := s.completeB2B(tx, po, actorID); err != nil {
				return err
			}
		}

		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"po":    result.PONumber,
		"total": result.TotalEstimated.String(),
	}).Info("purchase order received")
	s.broadcastPO(result, "received", actorID)
	return result, nil
}

// completeB2B closes the seller-side mirror when the buyer books goods in:
// the request moves shipped to completed and the seller's receivable order
// is marked served.
func (s *procurementService) completeB2B(tx *gorm.DB, po *model.PurchaseOrder, actorID uuid.UUID) error {
	req, err := s.b2bRepo.FindByPoID(po.ID)
	if err != nil {
		return fmt.Errorf("%w: b2b request for purchase order %s", model.ErrMissingEntity, po.ID)
	}
	locked, err := s.b2bRepo.LockByID(tx, req.ID)
	if err != nil {
		return err
	}
	if !locked.CanTransition(model.B2BCompleted) {
		return fmt.Errorf("%w: b2b request is %s, expected shipped", model.ErrInvalidTransition, locked.Status)
	}
	now := time.Now()
	locked.Status = model.B2BCompleted
	locked.CompletedAt = &now
	locked.UpdatedBy = actorID.String()
	if err := s.b2bRepo.SaveTx(tx, locked); err != nil {
		return err
	}
	if locked.SellerOrderID != nil {
		if err := s.orderRepo.UpdateStatusTx(tx, *locked.SellerOrderID, model.OrderServed); err != nil {
			return err
		}
	}
	po.DistributorStatus = string(model.B2BCompleted)
	return nil
}

func (s *procurementService) GetPO(poID uuid.UUID) (*model.PurchaseOrder, error) {
	return s.poRepo.FindByID(poID)
}

func (s *procurementService) ListPOs(outletID uuid.UUID, status model.POStatus) ([]model.PurchaseOrder, error) {
	return s.poRepo.FindByOutlet(outletID, status)
}

func (s *procurementService) CreateRequest(pr *model.PurchaseRequest, actorID uuid.UUID) error {
	if len(pr.Items) == 0 {
		return errors.New("purchase request has no items")
	}
	for _, item := range pr.Items {
		if _, err := s.ingredientRepo.FindByID(item.IngredientID); err != nil {
			return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, item.IngredientID)
		}
	}
	pr.Status = model.PRPending
	pr.RequestedBy = &actorID
	pr.CreatedBy = actorID.String()
	return s.poRepo.CreateRequest(pr)
}

// ApproveRequest converts a pending request into a draft PO against the
// chosen supplier, pricing lines from the supplier's catalog by SKU.
func (s *procurementService) ApproveRequest(prID uuid.UUID, supplierID uuid.UUID, actorID uuid.UUID, roleCode string) (*model.PurchaseOrder, error) {
	if !model.CanApprovePO(roleCode) {
		return nil, model.ErrUnauthorizedApproval
	}
	pr, err := s.poRepo.FindRequestByID(prID)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase request %s", model.ErrMissingEntity, prID)
	}
	if pr.Status != model.PRPending {
		return nil, fmt.Errorf("%w: purchase request is %s, expected pending", model.ErrInvalidTransition, pr.Status)
	}

	po := &model.PurchaseOrder{
		OutletID:   pr.OutletID,
		SupplierID: supplierID,
	}
	for _, item := range pr.Items {
		ing, err := s.ingredientRepo.FindByID(item.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, item.IngredientID)
		}
		cost := ing.AvgCost
		if catItem, err := s.supplierRepo.FindCatalogItem(supplierID, ing.SKU); err == nil {
			cost = catItem.Price
		}
		po.Items = append(po.Items, model.PurchaseOrderItem{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			Cost:         cost,
		})
	}
	if err := s.CreatePO(po, actorID); err != nil {
		return nil, err
	}

	pr.Status = model.PRApproved
	pr.PoID = &po.ID
	pr.UpdatedBy = actorID.String()
	if err := s.poRepo.SaveRequest(pr); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *procurementService) RejectRequest(prID uuid.UUID, actorID uuid.UUID, roleCode string) error {
	if !model.CanApprovePO(roleCode) {
		return model.ErrUnauthorizedApproval
	}
	pr, err := s.poRepo.FindRequestByID(prID)
	if err != nil {
		return fmt.Errorf("%w: purchase request %s", model.ErrMissingEntity, prID)
	}
	if pr.Status != model.PRPending {
		return fmt.Errorf("%w: purchase request is %s, expected pending", model.ErrInvalidTransition, pr.Status)
	}
	pr.Status = model.PRRejected
	pr.UpdatedBy = actorID.String()
	return s.poRepo.SaveRequest(pr)
}

func (s *procurementService) ListRequests(outletID uuid.UUID) ([]model.PurchaseRequest, error) {
	return s.poRepo.FindRequestsByOutlet(outletID)
}

func (s *procurementService) broadcastPO(po *model.PurchaseOrder, action string, actorID uuid.UUID) {
	go func() {
		payload := map[string]interface{}{
			"type":   "po_update",
			"action": action,
			"po": map[string]interface{}{
				"id":        po.ID,
				"po_number": po.PONumber,
				"status":    po.Status,
				"total":     po.TotalEstimated,
			},
			"user": map[string]interface{}{"id": actorID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
