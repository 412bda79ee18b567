package service

import (
	"fmt"
	"regexp"
	"testing"

	"sibos-pos/internal/model"
	"sibos-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory stand-ins so session mechanics can be exercised without a
// database. Only the methods the cart paths touch are implemented.

type fakeProductRepo struct {
	// products holds committed snapshots, seperti hasil FindByID di luar
	// transaksi. stock/variantStock are the live rows a lock reads.
	products     map[uuid.UUID]*model.Product
	stock        map[uuid.UUID]float64
	variantStock map[uuid.UUID]float64
}

func (f *fakeProductRepo) Create(p *model.Product) error        { return nil }
func (f *fakeProductRepo) FindAll() ([]model.Product, error)    { return nil, nil }
func (f *fakeProductRepo) FindBySKU(string) (*model.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeProductRepo) Update(*model.Product) error { return nil }
func (f *fakeProductRepo) Delete(uuid.UUID) error      { return nil }
func (f *fakeProductRepo) LockBySKU(*gorm.DB, string) (*model.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) LockByID(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	live, ok := f.stock[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := &model.Product{Stock: live}
	p.ID = id
	return p, nil
}

func (f *fakeProductRepo) LockVariant(_ *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	live, ok := f.variantStock[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := &model.ProductVariant{Stock: live}
	v.ID = id
	return v, nil
}

func (f *fakeProductRepo) UpdateStock(_ *gorm.DB, id uuid.UUID, newStock float64, _ string) error {
	f.stock[id] = newStock
	return nil
}

func (f *fakeProductRepo) UpdateVariantStock(_ *gorm.DB, id uuid.UUID, newStock float64) error {
	f.variantStock[id] = newStock
	return nil
}

func (f *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePromotionRepo struct {
	active []model.Promotion
}

func (f *fakePromotionRepo) Create(*model.Promotion) error            { return nil }
func (f *fakePromotionRepo) FindAll() ([]model.Promotion, error)      { return f.active, nil }
func (f *fakePromotionRepo) FindActive() ([]model.Promotion, error)   { return f.active, nil }
func (f *fakePromotionRepo) FindByID(uuid.UUID) (*model.Promotion, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakePromotionRepo) Update(*model.Promotion) error { return nil }
func (f *fakePromotionRepo) Delete(uuid.UUID) error        { return nil }

func newTestCartService(products ...*model.Product) *cartService {
	pr := &fakeProductRepo{
		products:     map[uuid.UUID]*model.Product{},
		stock:        map[uuid.UUID]float64{},
		variantStock: map[uuid.UUID]float64{},
	}
	for _, p := range products {
		pr.products[p.ID] = p
		pr.stock[p.ID] = p.Stock
		for _, v := range p.Variants {
			pr.variantStock[v.ID] = v.Stock
		}
	}
	return &cartService{
		sessions:      make(map[uuid.UUID]*CartSession),
		productRepo:   pr,
		promotionRepo: &fakePromotionRepo{},
		log:           logger.WithComponent("cart_service_test"),
	}
}

func testProduct(name string, price int64) *model.Product {
	p := &model.Product{
		SKU:           "SKU-" + name,
		Name:          name,
		Price:         decimal.NewFromInt(price),
		IsGlobalPrice: true,
	}
	p.ID = uuid.New()
	return p
}

func TestCreateSessionDefaults(t *testing.T) {
	svc := newTestCartService()
	outletID := uuid.New()

	sess, err := svc.CreateSession(outletID, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderDineIn, sess.Type)
	assert.Equal(t, outletID, sess.OutletID)
	assert.Empty(t, sess.Lines)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestCreateSessionRejectsUnknownChannel(t *testing.T) {
	svc := newTestCartService()
	_, err := svc.CreateSession(uuid.New(), model.OrderTakeAway, "ubereats")
	assert.Error(t, err)
}

func TestGetSessionMissing(t *testing.T) {
	svc := newTestCartService()
	_, err := svc.GetSession(uuid.New())
	assert.ErrorIs(t, err, model.ErrMissingEntity)
}

func TestAddItemMergesSameProduct(t *testing.T) {
	p := testProduct("Kopi Susu", 18000)
	svc := newTestCartService(p)
	sess, err := svc.CreateSession(uuid.New(), model.OrderTakeAway, "")
	require.NoError(t, err)

	_, err = svc.AddItem(sess.ID, p.ID, nil, 2, "")
	require.NoError(t, err)
	sess, err = svc.AddItem(sess.ID, p.ID, nil, 1, "")
	require.NoError(t, err)

	require.Len(t, sess.Lines, 1)
	assert.Equal(t, 3.0, sess.Lines[0].Quantity)
	assert.True(t, sess.Subtotal().Equal(decimal.NewFromInt(54000)), "got %s", sess.Subtotal())
}

func TestAddItemWholesaleTierKicksInOnMergedQuantity(t *testing.T) {
	p := testProduct("Air Mineral", 5000)
	p.WholesaleTiers = []model.WholesaleTier{
		{ProductID: p.ID, MinQty: 10, Price: decimal.NewFromInt(4000)},
	}
	svc := newTestCartService(p)
	sess, err := svc.CreateSession(uuid.New(), model.OrderTakeAway, "")
	require.NoError(t, err)

	sess, err = svc.AddItem(sess.ID, p.ID, nil, 6, "")
	require.NoError(t, err)
	assert.False(t, sess.Lines[0].AppliedWholesale)

	// Penambahan kedua melewati ambang tier, harga turun untuk seluruh baris
	sess, err = svc.AddItem(sess.ID, p.ID, nil, 6, "")
	require.NoError(t, err)
	require.Len(t, sess.Lines, 1)
	assert.True(t, sess.Lines[0].AppliedWholesale)
	assert.True(t, sess.Subtotal().Equal(decimal.NewFromInt(48000)), "got %s", sess.Subtotal())
}

func TestAddItemRequiresVariantSelection(t *testing.T) {
	p := testProduct("Es Teh", 8000)
	p.HasVariants = true
	svc := newTestCartService(p)
	sess, err := svc.CreateSession(uuid.New(), model.OrderDineIn, "")
	require.NoError(t, err)

	_, err = svc.AddItem(sess.ID, p.ID, nil, 1, "")
	assert.Error(t, err)
}

func TestCustomItemLifecycle(t *testing.T) {
	svc := newTestCartService()
	sess, err := svc.CreateSession(uuid.New(), model.OrderDineIn, "")
	require.NoError(t, err)

	sess, err = svc.AddCustomItem(sess.ID, "Ongkos kirim", decimal.NewFromInt(10000), 1, "")
	require.NoError(t, err)
	require.Len(t, sess.Lines, 1)
	assert.True(t, sess.Lines[0].IsCustom)

	lineID := sess.Lines[0].LineID
	sess, err = svc.UpdateQuantity(sess.ID, lineID, 2)
	require.NoError(t, err)
	assert.True(t, sess.Subtotal().Equal(decimal.NewFromInt(20000)), "got %s", sess.Subtotal())

	sess, err = svc.RemoveLine(sess.ID, lineID)
	require.NoError(t, err)
	assert.Empty(t, sess.Lines)
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	svc := newTestCartService()
	sess, err := svc.CreateSession(uuid.New(), model.OrderDineIn, "")
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(sess.ID, uuid.New(), 2)
	assert.ErrorIs(t, err, model.ErrMissingEntity)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := generateOrderNumber()
		require.True(t, re.MatchString(n), fmt.Sprintf("unexpected format %q", n))
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}

func TestGeneratePONumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^PO-\d{8}-[0-9A-F]{6}$`)
	n := generatePONumber()
	assert.True(t, re.MatchString(n), "unexpected format %q", n)
}

func TestDeductProductSharedBundleMember(t *testing.T) {
	base := testProduct("Air Mineral", 5000)
	base.Stock = 10
	bundle := testProduct("Paket Hemat", 20000)
	bundle.IsBundle = true
	bundle.BundleItems = []model.BundleItem{{MemberID: base.ID, Quantity: 1}}

	svc := newTestCartService(base, bundle)
	repo := svc.productRepo.(*fakeProductRepo)
	orderID := uuid.New()

	require.NoError(t, svc.deductProduct(nil, uuid.New(), bundle, nil, 5, orderID, "kasir"))
	require.NoError(t, svc.deductProduct(nil, uuid.New(), base, nil, 5, orderID, "kasir"))

	// Deduksi kedua harus membaca hasil deduksi pertama lewat lock,
	// bukan snapshot produk yang di-load sebelum transaksi.
	assert.InDelta(t, 0, repo.stock[base.ID], 1e-9)
}

func TestDeductProductRejectsStaleSnapshotOversell(t *testing.T) {
	p := testProduct("Teh Botol", 6000)
	p.Stock = 10
	svc := newTestCartService(p)
	repo := svc.productRepo.(*fakeProductRepo)

	// Kasir lain sudah menurunkan stok; snapshot di tangan masih 10.
	repo.stock[p.ID] = 3

	err := svc.deductProduct(nil, uuid.New(), p, nil, 5, uuid.New(), "kasir")
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.InDelta(t, 3, repo.stock[p.ID], 1e-9)
}

func TestDeductVariantUsesLockedStock(t *testing.T) {
	p := testProduct("Kopi Susu", 18000)
	variant := model.ProductVariant{Name: "Large", Stock: 4}
	variant.ID = uuid.New()
	p.Variants = []model.ProductVariant{variant}

	svc := newTestCartService(p)
	repo := svc.productRepo.(*fakeProductRepo)

	require.NoError(t, svc.deductProduct(nil, uuid.New(), p, &variant.ID, 3, uuid.New(), "kasir"))
	assert.InDelta(t, 1, repo.variantStock[variant.ID], 1e-9)

	err := svc.deductProduct(nil, uuid.New(), p, &variant.ID, 2, uuid.New(), "kasir")
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.InDelta(t, 1, repo.variantStock[variant.ID], 1e-9)
}

func TestBuildOrderStatusFollowsPaymentBranch(t *testing.T) {
	p := testProduct("Kopi", 10000)
	svc := newTestCartService(p)
	sess, err := svc.CreateSession(uuid.New(), model.OrderTakeAway, "")
	require.NoError(t, err)
	sess, err = svc.AddItem(sess.ID, p.ID, nil, 2, "")
	require.NoError(t, err)

	debt := buildOrder(sess, CheckoutParams{Method: model.PayDebt}, "kasir")
	assert.Equal(t, model.OrderServed, debt.Status)
	assert.Equal(t, model.PaymentUnpaid, debt.PaymentStatus)
	assert.True(t, debt.AmountPaid.IsZero())
	assert.Nil(t, debt.PaidAt)

	cash := buildOrder(sess, CheckoutParams{Method: model.PayCash, AmountPaid: decimal.NewFromInt(25000)}, "kasir")
	assert.Equal(t, model.OrderPaid, cash.Status)
	assert.Equal(t, model.PaymentPaid, cash.PaymentStatus)
	assert.True(t, cash.ChangeDue.Equal(decimal.NewFromInt(5000)), "change %s", cash.ChangeDue)
	assert.NotNil(t, cash.PaidAt)
}
