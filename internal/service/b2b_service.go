package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sibos-pos/internal/model"
	"sibos-pos/internal/repository"
	"sibos-pos/internal/ws"
	"sibos-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NegotiateLine adjusts one mirror line during negotiation. Zero values
// leave the original figure untouched.
type NegotiateLine struct {
	ItemID   uuid.UUID       `json:"item_id" validate:"uuid_required"`
	Quantity float64         `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

type ShipParams struct {
	CourierName   string `json:"courier_name" validate:"required"`
	WaybillNumber string `json:"waybill_number" validate:"required"`
}

type B2BService interface {
	ListIncoming(outletID uuid.UUID, status model.B2BStatus) ([]model.B2BRequest, error)
	GetRequest(id uuid.UUID) (*model.B2BRequest, error)
	// Accept moves pending to processed on the seller side and mirrors the
	// new state onto the buyer's purchase order.
	Accept(id uuid.UUID, actorID uuid.UUID) (*model.B2BRequest, error)
	// Negotiate rewrites line quantities/costs on both documents in one
	// transaction; the two totals are never allowed to drift apart.
	Negotiate(id uuid.UUID, lines []NegotiateLine, actorID uuid.UUID) (*model.B2BRequest, error)
	// Ship deducts seller product stock by SKU, writes the seller-side
	// receivable order and moves both documents to shipped, atomically.
	Ship(id uuid.UUID, p ShipParams, actorID uuid.UUID) (*model.B2BRequest, error)
	Reject(id uuid.UUID, note string, actorID uuid.UUID) (*model.B2BRequest, error)
	// SettlePayment marks the request, the buyer's PO and the seller's
	// receivable order paid, and books the cash in at the seller outlet.
	SettlePayment(id uuid.UUID, method model.PaymentMethod, actorID uuid.UUID) (*model.B2BRequest, error)
}

type b2bService struct {
	b2bRepo      repository.B2BRepository
	poRepo       repository.PurchaseOrderRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	movementRepo repository.MovementRepository
	cashRepo     repository.CashRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Entry
}

func NewB2BService(
	b2bRepo repository.B2BRepository,
	poRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	movementRepo repository.MovementRepository,
	cashRepo repository.CashRepository,
	db *gorm.DB,
	hub *ws.Hub,
) B2BService {
	return &b2bService{
		b2bRepo:      b2bRepo,
		poRepo:       poRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		cashRepo:     cashRepo,
		db:           db,
		wsHub:        hub,
		log:          logger.WithComponent("b2b_service"),
	}
}

func (s *b2bService) ListIncoming(outletID uuid.UUID, status model.B2BStatus) ([]model.B2BRequest, error) {
	return s.b2bRepo.FindByTargetOutlet(outletID, status)
}

func (s *b2bService) GetRequest(id uuid.UUID) (*model.B2BRequest, error) {
	return s.b2bRepo.FindByID(id)
}

// mirrorStatus copies the request state onto the buyer's PO so both sides
// read the same protocol position.
func (s *b2bService) mirrorStatus(tx *gorm.DB, req *model.B2BRequest, poStatus model.POStatus) error {
	po, err := s.poRepo.LockByID(tx, req.OriginalPoID)
	if err != nil {
		return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, req.OriginalPoID)
	}
	if poStatus != "" {
		if !po.CanTransition(poStatus) {
			return fmt.Errorf("%w: purchase order %s to %s", model.ErrInvalidTransition, po.Status, poStatus)
		}
		po.Status = poStatus
	}
	po.DistributorStatus = string(req.Status)
	return s.poRepo.SaveTx(tx, po)
}

func (s *b2bService) Accept(id uuid.UUID, actorID uuid.UUID) (*model.B2BRequest, error) {
	var result *model.B2BRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.b2bRepo.LockByID(tx, id)
		if err != nil {
			return fmt.Errorf("%w: b2b request %s", model.ErrMissingEntity, id)
		}
		if !req.CanTransition(model.B2BProcessed) {
			return fmt.Errorf("%w: b2b request is %s, expected pending", model.ErrInvalidTransition, req.Status)
		}
		req.Status = model.B2BProcessed
		req.UpdatedBy = actorID.String()
		if err := s.b2bRepo.SaveTx(tx, req); err != nil {
			return err
		}
		if err := s.mirrorStatus(tx, req, model.POStatusProcessed); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(result, "accepted", actorID)
	return result, nil
}

func (s *b2bService) Negotiate(id uuid.UUID, lines []NegotiateLine, actorID uuid.UUID) (*model.B2BRequest, error) {
	if len(lines) == 0 {
		return nil, errors.New("nothing to negotiate")
	}
	byItem := make(map[uuid.UUID]NegotiateLine, len(lines))
	for _, l := range lines {
		byItem[l.ItemID] = l
	}

	var result *model.B2BRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.b2bRepo.LockByID(tx, id)
		if err != nil {
			return fmt.Errorf("%w: b2b request %s", model.ErrMissingEntity, id)
		}
		if req.Status != model.B2BPending && req.Status != model.B2BProcessed {
			return fmt.Errorf("%w: b2b request is %s, negotiation closed", model.ErrInvalidTransition, req.Status)
		}
		po, err := s.poRepo.LockByID(tx, req.OriginalPoID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, req.OriginalPoID)
		}

		for i := range req.Items {
			item := &req.Items[i]
			line, ok := byItem[item.ID]
			if !ok {
				continue
			}
			if line.Quantity > 0 {
				item.Quantity = line.Quantity
			}
			if line.Cost.IsPositive() {
				item.Cost = line.Cost
			}
			// Propagate to the buyer line with the same SKU.
			for j := range po.Items {
				if po.Items[j].SKU == item.SKU {
					po.Items[j].Quantity = item.Quantity
					po.Items[j].Cost = item.Cost
					break
				}
			}
		}

		req.RecalcTotal()
		po.RecalcTotal()
		if !req.TotalAmount.Equal(po.TotalEstimated) {
			return errors.New("negotiated totals diverged between documents")
		}
		req.UpdatedBy = actorID.String()
		po.UpdatedBy = actorID.String()
		if err := s.b2bRepo.SaveTx(tx, req); err != nil {
			return err
		}
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(result, "negotiated", actorID)
	return result, nil
}

func (s *b2bService) Ship(id uuid.UUID, p ShipParams, actorID uuid.UUID) (*model.B2BRequest, error) {
	if p.CourierName == "" || p.WaybillNumber == "" {
		return nil, errors.New("courier name and waybill number are required")
	}

	var result *model.B2BRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.b2bRepo.LockByID(tx, id)
		if err != nil {
			return fmt.Errorf("%w: b2b request %s", model.ErrMissingEntity, id)
		}
		if !req.CanTransition(model.B2BShipped) {
			return fmt.Errorf("%w: b2b request is %s, expected processed", model.ErrInvalidTransition, req.Status)
		}

		// Seller fulfills from its sellable products, joined by SKU. Every
		// line must be coverable or the whole shipment rolls back.
		order := &model.Order{
			OutletID:      req.TargetOutletID,
			OrderNumber:   generateOrderNumber(),
			Type:          model.OrderB2B,
			Status:        model.OrderShipped,
			PaymentStatus: model.PaymentUnpaid,
			Subtotal:      req.TotalAmount,
			Total:         req.TotalAmount,
			ReferencePoID: &req.OriginalPoID,
		}
		order.CreatedBy = actorID.String()
		if err := s.orderRepo.CreateTx(tx, order); err != nil {
			return err
		}

		for _, item := range req.Items {
			product, err := s.productRepo.LockBySKU(tx, item.SKU)
			if err != nil {
				return fmt.Errorf("%w: no sellable product with sku %s", model.ErrMissingEntity, item.SKU)
			}
			newStock := product.Stock - item.Quantity
			if newStock < -stockEpsilon {
				return fmt.Errorf("%w: %s has %.3f, need %.3f",
					model.ErrInsufficientStock, product.Name, product.Stock, item.Quantity)
			}
			if err := s.productRepo.UpdateStock(tx, product.ID, newStock, actorID.String()); err != nil {
				return err
			}

			mv := &model.StockMovement{
				OutletID:     req.TargetOutletID,
				ProductID:    &product.ID,
				Type:         model.MovementB2BShip,
				Quantity:     -item.Quantity,
				BalanceAfter: newStock,
				UnitCost:     product.Cogs,
				RefType:      "b2b_request",
				RefID:        &req.ID,
			}
			mv.CreatedBy = actorID.String()
			if err := s.movementRepo.CreateTx(tx, mv); err != nil {
				return err
			}

			oi := model.OrderItem{
				OrderID:   order.ID,
				ProductID: &product.ID,
				Name:      product.Name,
				SKU:       product.SKU,
				Quantity:  item.Quantity,
				UnitPrice: item.Cost,
				LineTotal: item.Cost.Mul(decimal.NewFromFloat(item.Quantity)),
			}
			oi.CreatedBy = actorID.String()
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, oi)
		}

		now := time.Now()
		req.Status = model.B2BShipped
		req.CourierName = p.CourierName
		req.WaybillNumber = p.WaybillNumber
		req.ShippedAt = &now
		req.SellerOrderID = &order.ID
		req.UpdatedBy = actorID.String()
		if err := s.b2bRepo.SaveTx(tx, req); err != nil {
			return err
		}
		if err := s.mirrorStatus(tx, req, model.POStatusShipped); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request": result.ID,
		"waybill": result.WaybillNumber,
	}).Info("b2b shipment booked")
	s.broadcast(result, "shipped", actorID)
	return result, nil
}

func (s *b2bService) Reject(id uuid.UUID, note string, actorID uuid.UUID) (*model.B2BRequest, error) {
	var result *model.B2BRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.b2bRepo.LockByID(tx, id)
		if err != nil {
			return fmt.Errorf("%w: b2b request %s", model.ErrMissingEntity, id)
		}
		if !req.CanTransition(model.B2BRejected) {
			return fmt.Errorf("%w: b2b request is %s, cannot reject", model.ErrInvalidTransition, req.Status)
		}
		req.Status = model.B2BRejected
		if note != "" {
			req.Note = note
		}
		req.UpdatedBy = actorID.String()
		if err := s.b2bRepo.SaveTx(tx, req); err != nil {
			return err
		}
		if err := s.mirrorStatus(tx, req, model.POStatusRejected); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(result, "rejected", actorID)
	return result, nil
}

func (s *b2bService) SettlePayment(id uuid.UUID, method model.PaymentMethod, actorID uuid.UUID) (*model.B2BRequest, error) {
	var result *model.B2BRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := s.b2bRepo.LockByID(tx, id)
		if err != nil {
			return fmt.Errorf("%w: b2b request %s", model.ErrMissingEntity, id)
		}
		if req.Status != model.B2BShipped && req.Status != model.B2BCompleted {
			return fmt.Errorf("%w: b2b request is %s, nothing to settle", model.ErrInvalidTransition, req.Status)
		}
		if req.PaymentStatus == model.PaymentPaid {
			return errors.New("b2b request already settled")
		}

		now := time.Now()
		req.PaymentStatus = model.PaymentPaid
		req.UpdatedBy = actorID.String()
		if err := s.b2bRepo.SaveTx(tx, req); err != nil {
			return err
		}

		po, err := s.poRepo.LockByID(tx, req.OriginalPoID)
		if err != nil {
			return fmt.Errorf("%w: purchase order %s", model.ErrMissingEntity, req.OriginalPoID)
		}
		po.PaymentStatus = model.PaymentPaid
		po.PaymentMethod = method
		po.UpdatedBy = actorID.String()
		if err := s.poRepo.SaveTx(tx, po); err != nil {
			return err
		}

		if req.SellerOrderID != nil {
			if err := s.orderRepo.UpdatePaymentTx(tx, *req.SellerOrderID, model.PaymentPaid, now); err != nil {
				return err
			}
		}

		entry := &model.CashEntry{
			OutletID:    req.TargetOutletID,
			Type:        model.CashIn,
			Category:    model.CashCategoryB2BSettlement,
			Amount:      req.TotalAmount,
			Method:      method,
			Description: "b2b settlement",
			RefType:     "b2b_request",
			RefID:       &req.ID,
		}
		entry.CreatedBy = actorID.String()
		if err := s.cashRepo.CreateTx(tx, entry); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(result, "payment_settled", actorID)
	return result, nil
}

func (s *b2bService) broadcast(req *model.B2BRequest, action string, actorID uuid.UUID) {
	go func() {
		payload := map[string]interface{}{
			"type":   "b2b_update",
			"action": action,
			"request": map[string]interface{}{
				"id":     req.ID,
				"status": req.Status,
				"total":  req.TotalAmount,
			},
			"user": map[string]interface{}{"id": actorID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
