package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sibos-pos/internal/catalog"
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

// CartSession is an in-flight register session. Sessions live in memory
// only; nothing touches the database until checkout commits.
type CartSession struct {
	ID         uuid.UUID          `json:"id"`
	OutletID   uuid.UUID          `json:"outlet_id"`
	Type       model.OrderType    `json:"type"`
	Channel    model.Channel      `json:"channel,omitempty"`
	CustomerID *uuid.UUID         `json:"customer_id,omitempty"`
	Lines      []catalog.CartItem `json:"lines"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Subtotal sums all line totals, bonus lines included (they are zero).
func (c *CartSession) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lines {
		total = total.Add(c.Lines[i].LineTotal())
	}
	return total
}

type CheckoutParams struct {
	Method     model.PaymentMethod `json:"method" validate:"required,oneof=cash transfer qris debt"`
	AmountPaid decimal.Decimal     `json:"amount_paid"`
	StaffID    *uuid.UUID          `json:"staff_id,omitempty"`
}

type CartService interface {
	CreateSession(outletID uuid.UUID, orderType model.OrderType, channel model.Channel) (*CartSession, error)
	GetSession(sessionID uuid.UUID) (*CartSession, error)
	AddItem(sessionID, productID uuid.UUID, variantID *uuid.UUID, qty float64, note string) (*CartSession, error)
	AddCustomItem(sessionID uuid.UUID, name string, price decimal.Decimal, qty float64, note string) (*CartSession, error)
	UpdateQuantity(sessionID, lineID uuid.UUID, qty float64) (*CartSession, error)
	RemoveLine(sessionID, lineID uuid.UUID) (*CartSession, error)
	SetCustomer(sessionID uuid.UUID, customerID *uuid.UUID) (*CartSession, error)
	// Checkout commits the session atomically: stock deltas, the order row,
	// shift totals and the cash entry all land in one transaction.
	Checkout(sessionID uuid.UUID, p CheckoutParams, actorID string) (*model.Order, error)
}

type cartService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*CartSession

	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	promotionRepo  repository.PromotionRepository
	customerRepo   repository.CustomerRepository
	orderRepo      repository.OrderRepository
	shiftRepo      repository.ShiftRepository
	cashRepo       repository.CashRepository
	stockService   StockService
	db             *gorm.DB
	wsHub          *ws.Hub
	log            *logrus.Entry
}

func NewCartService(
	productRepo repository.ProductRepository,
	ingredientRepo repository.IngredientRepository,
	promotionRepo repository.PromotionRepository,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	shiftRepo repository.ShiftRepository,
	cashRepo repository.CashRepository,
	stockService StockService,
	db *gorm.DB,
	hub *ws.Hub,
) CartService {
	return &cartService{
		sessions:       make(map[uuid.UUID]*CartSession),
		productRepo:    productRepo,
		ingredientRepo: ingredientRepo,
		promotionRepo:  promotionRepo,
		customerRepo:   customerRepo,
		orderRepo:      orderRepo,
		shiftRepo:      shiftRepo,
		cashRepo:       cashRepo,
		stockService:   stockService,
		db:             db,
		wsHub:          hub,
		log:            logger.WithComponent("cart_service"),
	}
}

func (s *cartService) CreateSession(outletID uuid.UUID, orderType model.OrderType, channel model.Channel) (*CartSession, error) {
	if orderType == "" {
		orderType = model.OrderDineIn
	}
	if channel != "" && !model.ValidChannel(channel) {
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
	sess := &CartSession{
		ID:        uuid.New(),
		OutletID:  outletID,
		Type:      orderType,
		Channel:   channel,
		Lines:     []catalog.CartItem{},
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *cartService) GetSession(sessionID uuid.UUID) (*CartSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	return sess, nil
}

// rewardResolver builds the lookup the promotion pass uses to snapshot
// bonus line names.
func (s *cartService) rewardResolver() catalog.RewardResolver {
	return func(productID uuid.UUID) (string, string, bool) {
		p, err := s.productRepo.FindByID(productID)
		if err != nil {
			return "", "", false
		}
		return p.Name, p.SKU, true
	}
}

// refresh reprices every catalog line and re-derives bonus lines. Runs
// after each cart mutation so the session a cashier sees is always the
// session that will commit.
func (s *cartService) refresh(sess *CartSession) error {
	for i := range sess.Lines {
		line := &sess.Lines[i]
		if line.IsCustom || line.IsPromoBonus || line.ProductID == nil {
			continue
		}
		p, err := s.productRepo.FindByID(*line.ProductID)
		if err != nil {
			return fmt.Errorf("%w: product %s", model.ErrMissingEntity, *line.ProductID)
		}
		var variant *model.ProductVariant
		if line.VariantID != nil {
			for vi := range p.Variants {
				if p.Variants[vi].ID == *line.VariantID {
					variant = &p.Variants[vi]
					break
				}
			}
		}
		if sess.Channel != "" {
			price, err := catalog.ChannelPrice(p, sess.Channel)
			if err != nil {
				return err
			}
			line.UnitPrice = price
			line.AppliedWholesale = false
		} else {
			line.UnitPrice, line.AppliedWholesale = catalog.ResolvePrice(p, variant, line.Quantity, sess.OutletID)
		}
	}

	promos, err := s.promotionRepo.FindActive()
	if err != nil {
		return err
	}
	sess.Lines = catalog.ApplyPromotions(sess.Lines, promos, time.Now(), s.rewardResolver())
	return nil
}

func (s *cartService) AddItem(sessionID, productID uuid.UUID, variantID *uuid.UUID, qty float64, note string) (*CartSession, error) {
	if qty <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	p, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrMissingEntity, productID)
	}
	if !p.AvailableAt(time.Now()) {
		return nil, fmt.Errorf("%s is outside its availability schedule", p.Name)
	}
	if p.HasVariants && variantID == nil {
		return nil, fmt.Errorf("%s requires a variant selection", p.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	if !catalog.AvailableAtOutlet(p, sess.OutletID) {
		return nil, fmt.Errorf("%s is not sold at this outlet", p.Name)
	}

	name := p.Name
	sku := p.SKU
	if variantID != nil {
		found := false
		for vi := range p.Variants {
			if p.Variants[vi].ID == *variantID {
				name = p.Name + " - " + p.Variants[vi].Name
				if p.Variants[vi].SKU != "" {
					sku = p.Variants[vi].SKU
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: variant %s", model.ErrMissingEntity, *variantID)
		}
	}

	// Same product+variant merges into one line so wholesale tiers see the
	// combined quantity.
	merged := false
	for i := range sess.Lines {
		l := &sess.Lines[i]
		if l.IsPromoBonus || l.IsCustom || l.ProductID == nil || *l.ProductID != productID {
			continue
		}
		if (l.VariantID == nil) != (variantID == nil) {
			continue
		}
		if l.VariantID != nil && *l.VariantID != *variantID {
			continue
		}
		l.Quantity += qty
		merged = true
		break
	}
	if !merged {
		pid := productID
		sess.Lines = append(sess.Lines, catalog.CartItem{
			LineID:    uuid.New(),
			ProductID: &pid,
			VariantID: variantID,
			Name:      name,
			SKU:       sku,
			Quantity:  qty,
			Note:      note,
		})
	}

	if err := s.refresh(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *cartService) AddCustomItem(sessionID uuid.UUID, name string, price decimal.Decimal, qty float64, note string) (*CartSession, error) {
	if name == "" {
		return nil, errors.New("custom item needs a name")
	}
	if qty <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	sess.Lines = append(sess.Lines, catalog.CartItem{
		LineID:    uuid.New(),
		Name:      name,
		Quantity:  qty,
		UnitPrice: price,
		IsCustom:  true,
		Note:      note,
	})
	if err := s.refresh(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *cartService) UpdateQuantity(sessionID, lineID uuid.UUID, qty float64) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	for i := range sess.Lines {
		l := &sess.Lines[i]
		if l.LineID != lineID {
			continue
		}
		if l.IsPromoBonus {
			return nil, errors.New("bonus lines are system-managed")
		}
		if qty <= 0 {
			sess.Lines = append(sess.Lines[:i], sess.Lines[i+1:]...)
		} else {
			l.Quantity = qty
		}
		if err := s.refresh(sess); err != nil {
			return nil, err
		}
		return sess, nil
	}
	return nil, fmt.Errorf("%w: cart line %s", model.ErrMissingEntity, lineID)
}

func (s *cartService) RemoveLine(sessionID, lineID uuid.UUID) (*CartSession, error) {
	return s.UpdateQuantity(sessionID, lineID, 0)
}

func (s *cartService) SetCustomer(sessionID uuid.UUID, customerID *uuid.UUID) (*CartSession, error) {
	if customerID != nil {
		if _, err := s.customerRepo.FindByID(*customerID); err != nil {
			return nil, fmt.Errorf("%w: customer %s", model.ErrMissingEntity, *customerID)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	sess.CustomerID = customerID
	return sess, nil
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

func (s *cartService) Checkout(sessionID uuid.UUID, p CheckoutParams, actorID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: cart session %s", model.ErrMissingEntity, sessionID)
	}
	if len(sess.Lines) == 0 {
		return nil, errors.New("cart is empty")
	}
	if err := s.refresh(sess); err != nil {
		return nil, err
	}

	if p.Method == model.PayDebt && sess.CustomerID == nil {
		return nil, model.ErrCustomerRequired
	}

	subtotal := sess.Subtotal()
	total := subtotal
	if p.Method == model.PayCash && p.AmountPaid.LessThan(total) {
		return nil, fmt.Errorf("amount paid %s is below total %s", p.AmountPaid, total)
	}

	order := buildOrder(sess, p, actorID)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Checkout needs an open register; the lock also serializes the
		// running-total updates of concurrent commits.
		shift, err := s.shiftRepo.LockOpenByOutlet(tx, sess.OutletID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrShiftRequired
			}
			return err
		}
		order.ShiftID = &shift.ID
		if err := s.orderRepo.CreateTx(tx, order); err != nil {
			return err
		}

		// Bonus and custom lines never touch stock; everything else is
		// re-validated under lock at commit time.
		for i := range sess.Lines {
			l := &sess.Lines[i]
			if l.IsPromoBonus || l.IsCustom || l.ProductID == nil {
				continue
			}
			if err := s.deductLine(tx, sess.OutletID, l, order.ID, actorID); err != nil {
				return err
			}
		}

		if p.Method == model.PayDebt {
			customer, err := s.customerRepo.LockByID(tx, *sess.CustomerID)
			if err != nil {
				return fmt.Errorf("%w: customer %s", model.ErrMissingEntity, *sess.CustomerID)
			}
			customer.DebtBalance = customer.DebtBalance.Add(total)
			if err := s.customerRepo.SaveTx(tx, customer); err != nil {
				return err
			}
		}

		shift.AddSale(p.Method, total)
		shift.UpdatedBy = actorID
		if err := s.shiftRepo.SaveTx(tx, shift); err != nil {
			return err
		}

		if p.Method == model.PayCash || p.Method == model.PayTransfer || p.Method == model.PayQris {
			entry := &model.CashEntry{
				OutletID:    sess.OutletID,
				Type:        model.CashIn,
				Category:    model.CashCategorySale,
				Amount:      total,
				Method:      p.Method,
				Description: "order " + order.OrderNumber,
				RefType:     "order",
				RefID:       &order.ID,
			}
			entry.CreatedBy = actorID
			if err := s.cashRepo.CreateTx(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	delete(s.sessions, sessionID)
	s.log.WithFields(logrus.Fields{
		"order":  order.OrderNumber,
		"total":  total.String(),
		"method": p.Method,
	}).Info("checkout committed")
	s.broadcastOrder(order, actorID)
	return order, nil
}

// buildOrder snapshots the session into an immutable order document.
// Status dan PaymentStatus diturunkan dari metode bayar: hutang berarti
// barang sudah diserahkan (served) tapi sisi pembayaran masih terbuka.
func buildOrder(sess *CartSession, p CheckoutParams, actorID string) *model.Order {
	subtotal := sess.Subtotal()
	order := &model.Order{
		OutletID:      sess.OutletID,
		OrderNumber:   generateOrderNumber(),
		Type:          sess.Type,
		Status:        model.OrderPaid,
		PaymentStatus: model.PaymentPaid,
		PaymentMethod: p.Method,
		Subtotal:      subtotal,
		Total:         subtotal,
		CustomerID:    sess.CustomerID,
		StaffID:       p.StaffID,
	}
	order.CreatedBy = actorID
	now := time.Now()
	order.PaidAt = &now
	if p.Method == model.PayCash {
		order.AmountPaid = p.AmountPaid
		order.ChangeDue = p.AmountPaid.Sub(order.Total)
	} else {
		order.AmountPaid = order.Total
	}
	if p.Method == model.PayDebt {
		order.Status = model.OrderServed
		order.PaymentStatus = model.PaymentUnpaid
		order.AmountPaid = decimal.Zero
		order.PaidAt = nil
	}

	for i := range sess.Lines {
		l := &sess.Lines[i]
		order.Items = append(order.Items, model.OrderItem{
			ProductID:        l.ProductID,
			VariantID:        l.VariantID,
			Name:             l.Name,
			SKU:              l.SKU,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			LineTotal:        l.LineTotal(),
			AppliedWholesale: l.AppliedWholesale,
			IsPromoBonus:     l.IsPromoBonus,
			IsCustom:         l.IsCustom,
			Note:             l.Note,
		})
	}
	return order
}

// deductLine applies the stock effect of one committed cart line. Recipe
// products consume ingredients through the ledger; direct-stock products
// and variants decrement their own counters; bundles fan out to members.
func (s *cartService) deductLine(tx *gorm.DB, outletID uuid.UUID, l *catalog.CartItem, orderID uuid.UUID, actorID string) error {
	p, err := s.productRepo.FindByID(*l.ProductID)
	if err != nil {
		return fmt.Errorf("%w: product %s", model.ErrMissingEntity, *l.ProductID)
	}
	return s.deductProduct(tx, outletID, p, l.VariantID, l.Quantity, orderID, actorID)
}

func (s *cartService) deductProduct(tx *gorm.DB, outletID uuid.UUID, p *model.Product, variantID *uuid.UUID, qty float64, orderID uuid.UUID, actorID string) error {
	if p.IsBundle {
		for _, member := range p.BundleItems {
			mp, err := s.productRepo.FindByID(member.MemberID)
			if err != nil {
				return fmt.Errorf("%w: bundle member %s", model.ErrMissingEntity, member.MemberID)
			}
			if err := s.deductProduct(tx, outletID, mp, nil, member.Quantity*qty, orderID, actorID); err != nil {
				return err
			}
		}
		return nil
	}

	if variantID != nil {
		var variant *model.ProductVariant
		for vi := range p.Variants {
			if p.Variants[vi].ID == *variantID {
				variant = &p.Variants[vi]
				break
			}
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %s", model.ErrMissingEntity, *variantID)
		}
		if variant.HasRecipe {
			return s.deductRecipe(tx, p.Recipe, variantID, qty, orderID, actorID)
		}
		// Stok dibaca ulang di bawah FOR UPDATE: dua baris yang menyentuh
		// varian yang sama dalam satu checkout (atau dari kasir lain)
		// harus melihat hasil deduksi sebelumnya, bukan snapshot lama.
		locked, err := s.productRepo.LockVariant(tx, variant.ID)
		if err != nil {
			return fmt.Errorf("%w: variant %s", model.ErrMissingEntity, *variantID)
		}
		newStock := locked.Stock - qty
		if newStock < -stockEpsilon {
			return fmt.Errorf("%w: %s has %.3f, need %.3f",
				model.ErrInsufficientStock, variant.Name, locked.Stock, qty)
		}
		return s.productRepo.UpdateVariantStock(tx, variant.ID, newStock)
	}

	if p.HasRecipe() {
		return s.deductRecipe(tx, p.Recipe, nil, qty, orderID, actorID)
	}

	locked, err := s.productRepo.LockByID(tx, p.ID)
	if err != nil {
		return fmt.Errorf("%w: product %s", model.ErrMissingEntity, p.ID)
	}
	newStock := locked.Stock - qty
	if newStock < -stockEpsilon {
		return fmt.Errorf("%w: %s has %.3f, need %.3f",
			model.ErrInsufficientStock, p.Name, locked.Stock, qty)
	}
	return s.productRepo.UpdateStock(tx, p.ID, newStock, actorID)
}

func (s *cartService) deductRecipe(tx *gorm.DB, recipe []model.RecipeItem, variantID *uuid.UUID, qty float64, orderID uuid.UUID, actorID string) error {
	for _, row := range recipe {
		if variantID != nil {
			if row.VariantID == nil || *row.VariantID != *variantID {
				continue
			}
		} else if row.VariantID != nil {
			continue
		}
		ing, err := s.ingredientRepo.FindByID(row.IngredientID)
		if err != nil {
			return fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, row.IngredientID)
		}
		required, err := unitconv.Convert(row.Quantity*qty, row.Unit, ing.Unit)
		if err != nil {
			return fmt.Errorf("recipe line %s: %w", ing.Name, err)
		}
		if _, err := s.stockService.ApplyDeltaTx(tx, DeltaParams{
			IngredientID: row.IngredientID,
			Delta:        -required,
			Type:         model.MovementSale,
			RefType:      "order",
			RefID:        &orderID,
			ActorID:      actorID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *cartService) broadcastOrder(order *model.Order, actorID string) {
	go func() {
		payload := map[string]interface{}{
			"type":   "order_created",
			"action": "checkout",
			"order": map[string]interface{}{
				"id":           order.ID,
				"order_number": order.OrderNumber,
				"total":        order.Total,
				"method":       order.PaymentMethod,
			},
			"user": map[string]interface{}{"id": actorID},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
