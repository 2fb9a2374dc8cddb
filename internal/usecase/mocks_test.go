package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetAvailability(ctx context.Context, id string, isAvailable bool) error {
	return m.Called(ctx, id, isAvailable).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) FindByIDUnscoped(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartItemRepository struct{ mock.Mock }

func (m *MockCartItemRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	args := m.Called(ctx, buyerID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *MockCartItemRepository) ListByBuyerForUpdate(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	args := m.Called(ctx, buyerID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *MockCartItemRepository) FindByBuyerAndProduct(ctx context.Context, buyerID, productID string) (model.CartItem, error) {
	args := m.Called(ctx, buyerID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *MockCartItemRepository) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *MockCartItemRepository) SetQuantity(ctx context.Context, buyerID, productID string, qty int64) (model.CartItem, error) {
	args := m.Called(ctx, buyerID, productID, qty)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *MockCartItemRepository) DeleteByBuyerAndProduct(ctx context.Context, buyerID, productID string) (model.CartItem, error) {
	args := m.Called(ctx, buyerID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *MockCartItemRepository) DeleteAllByBuyer(ctx context.Context, buyerID string) (int64, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartItemRepository) DeleteByIDs(ctx context.Context, buyerID string, ids []string) (int64, error) {
	args := m.Called(ctx, buyerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, buyerID, key string) (model.Order, bool, error) {
	args := m.Called(ctx, buyerID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	args := m.Called(ctx, buyerID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

type MockOrderItemRepository struct{ mock.Mock }

func (m *MockOrderItemRepository) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *MockOrderItemRepository) ListByOrderIDs(ctx context.Context, ids []string) (map[string][]model.OrderItem, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).(map[string][]model.OrderItem)
	return items, args.Error(1)
}

func (m *MockOrderItemRepository) ListBySeller(ctx context.Context, sellerID string) ([]repo.SellerOrderLine, error) {
	args := m.Called(ctx, sellerID)
	lines, _ := args.Get(0).([]repo.SellerOrderLine)
	return lines, args.Error(1)
}

type MockAuditLogRepository struct{ mock.Mock }

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// トランザクションは使わず、渡されたmockでfnを呼ぶ
type fakeTx struct {
	orders     *MockOrderRepository
	orderItems *MockOrderItemRepository
	cartItems  *MockCartItemRepository
	products   *MockProductRepository
	calls      int
}

func (f *fakeTx) Orders() repo.OrderRepository         { return f.orders }
func (f *fakeTx) OrderItems() repo.OrderItemRepository { return f.orderItems }
func (f *fakeTx) CartItems() repo.CartItemRepository   { return f.cartItems }
func (f *fakeTx) Products() repo.ProductRepository     { return f.products }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	f.calls++
	return fn(f)
}

// =====================
// Fakes
// =====================

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// "hashed:" を付けるだけのハッシュ
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(plain, hashed string) bool  { return hashed == "hashed:"+plain }

type stubIssuer struct{}

func (stubIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	return "token-" + userID + "-" + string(role), now.Add(time.Hour), nil
}

type memImages struct {
	saved []string
	err   error
}

func (m *memImages) Save(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	path := "/images/" + filename
	m.saved = append(m.saved, path)
	return path, nil
}

type sentEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	sent []sentEvent
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sentEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func testLogger() (logrus.FieldLogger, *test.Hook) {
	return test.NewNullLogger()
}

var (
	buyer  = usecase.Actor{UserID: "buyer-1", Role: model.RoleBuyer}
	vender = usecase.Actor{UserID: "vender-1", Role: model.RoleVender}
	admin  = usecase.Actor{UserID: "admin-1", Role: model.RoleAdmin}
)

var errDB = errors.New("db down")

// AppErrorの種類とメッセージを確認
func assertAppError(t *testing.T, err error, kind usecase.ErrorKind, msg string) {
	t.Helper()
	ae, ok := usecase.AsAppError(err)
	if !assert.True(t, ok, "expected AppError, got %v", err) {
		return
	}
	assert.Equal(t, kind, ae.Kind)
	if msg != "" {
		assert.Equal(t, msg, ae.Message)
	}
}
