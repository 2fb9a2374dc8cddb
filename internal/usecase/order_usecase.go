package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"github.com/sirupsen/logrus"
)

const maxIdempotencyKeyLen = 255

// 同じキーの注文が同時に入った
var errIdempotencyRace = errors.New("idempotency key raced")

type OrderUsecase struct {
	tx            repo.TransactionManager
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	productRepo   repo.ProductRepository
	userRepo      repo.UserRepository
	events        EventPublisher
	idGen         IDGenerator
	clock         Clock
	log           logrus.FieldLogger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
	userRepo repo.UserRepository,
	events EventPublisher,
	idGen IDGenerator,
	clock Clock,
	log logrus.FieldLogger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:            tx,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		events:        events,
		idGen:         idGen,
		clock:         clock,
		log:           log,
	}
}

type OrderOutput struct {
	ID           string            `json:"id"`
	BuyerID      string            `json:"buyerId"`
	PurchaseDate time.Time         `json:"purchaseDate"`
	Items        []model.OrderItem `json:"items"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// order_events に流すイベント
type OrderEvent struct {
	Type         string            `json:"type"`
	OrderID      string            `json:"orderId"`
	BuyerID      string            `json:"buyerId"`
	PurchaseDate time.Time         `json:"purchaseDate"`
	Items        []model.OrderItem `json:"items"`
}

// カートから注文を作る。
// 注文作成とカート削除は1つのトランザクションで行う。
// idempotencyKeyが同じなら最初の注文をそのまま返す（created=false）
func (u *OrderUsecase) CreateFromCart(ctx context.Context, actor Actor, idempotencyKey string) (OrderOutput, bool, error) {
	if !actor.Is(model.RoleBuyer) {
		return OrderOutput{}, false, errForbidden("Only buyer can create orders from cart.")
	}
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return OrderOutput{}, false, errValidation("Idempotency-Key is too long.")
	}

	var out OrderOutput
	created := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actor.UserID, key)
			if err != nil {
				return errInternal(err)
			}
			if found {
				items, err := r.OrderItems().ListByOrderIDs(ctx, []string{existing.ID})
				if err != nil {
					return errInternal(err)
				}
				out = toOrderOutput(existing, items[existing.ID])
				return nil
			}
		}

		//確定まで他のカート操作・同時checkoutをブロックする
		cartItems, err := r.CartItems().ListByBuyerForUpdate(ctx, actor.UserID)
		if err != nil {
			return errInternal(err)
		}
		if len(cartItems) == 0 {
			return errValidation("Cart is empty.")
		}

		//商品を確定時に読み直し、seller_idを写す
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return errValidation("Some products in cart no longer exist.")
			}
			if err != nil {
				return errInternal(err)
			}
			orderItems = append(orderItems, model.OrderItem{
				ID:        u.idGen.NewID(),
				ProductID: p.ID,
				SellerID:  p.SellerID,
				Quantity:  ci.Quantity,
			})
		}

		now := u.clock.Now()
		order := model.Order{
			ID:           u.idGen.NewID(),
			BuyerID:      actor.UserID,
			PurchaseDate: now,
			CreatedAt:    now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			if key != "" && errors.Is(err, repo.ErrDuplicate) {
				return errIdempotencyRace
			}
			return errInternal(err)
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return errInternal(err)
		}

		//読んだ明細だけ消す（注文と同じコミット）。件数が合わなければロールバック
		cartIDs := make([]string, 0, len(cartItems))
		for _, ci := range cartItems {
			cartIDs = append(cartIDs, ci.ID)
		}
		deleted, err := r.CartItems().DeleteByIDs(ctx, actor.UserID, cartIDs)
		if err != nil {
			return errInternal(err)
		}
		if deleted != int64(len(cartItems)) {
			return errConflict("Cart changed during checkout. Please retry.")
		}

		out = toOrderOutput(order, orderItems)
		created = true
		return nil
	})

	if errors.Is(err, errIdempotencyRace) {
		//競合はロールバック後にもう一回検索して同じ結果を返す
		return u.replay(ctx, actor, key)
	}
	if err != nil {
		return OrderOutput{}, false, errInternal(err)
	}

	if created {
		u.publishCreated(ctx, out)
	}
	return out, created, nil
}

func (u *OrderUsecase) replay(ctx context.Context, actor Actor, key string) (OrderOutput, bool, error) {
	existing, found, err := u.orderRepo.FindByIdempotencyKey(ctx, actor.UserID, key)
	if err != nil {
		return OrderOutput{}, false, errInternal(err)
	}
	if !found {
		return OrderOutput{}, false, errConflict("Order with this Idempotency-Key is being processed.")
	}
	items, err := u.orderItemRepo.ListByOrderIDs(ctx, []string{existing.ID})
	if err != nil {
		return OrderOutput{}, false, errInternal(err)
	}
	return toOrderOutput(existing, items[existing.ID]), false, nil
}

// 購入日の新しい順
func (u *OrderUsecase) ListMine(ctx context.Context, actor Actor) ([]OrderOutput, error) {
	if !actor.Is(model.RoleBuyer) {
		return nil, errForbidden("Only buyer can view own orders.")
	}

	orders, err := u.orderRepo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, errInternal(err)
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := u.orderItemRepo.ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, errInternal(err)
	}

	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o, items[o.ID]))
	}
	return out, nil
}

// 他人の注文は存在しない扱い（404）
func (u *OrderUsecase) Get(ctx context.Context, actor Actor, orderID string) (OrderOutput, error) {
	if !actor.Is(model.RoleBuyer) {
		return OrderOutput{}, errForbidden("Only buyer can view own orders.")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && o.BuyerID != actor.UserID) {
		return OrderOutput{}, errNotFound("Order not found.")
	}
	if err != nil {
		return OrderOutput{}, errInternal(err)
	}

	items, err := u.orderItemRepo.ListByOrderIDs(ctx, []string{o.ID})
	if err != nil {
		return OrderOutput{}, errInternal(err)
	}
	return toOrderOutput(o, items[o.ID]), nil
}

// 販売明細の1行
type SalesRow struct {
	OrderID      string    `json:"orderId"`
	ProductID    string    `json:"productId"`
	ProductName  string    `json:"productName"`
	ImagePath    string    `json:"imagePath"`
	Quantity     int64     `json:"quantity"`
	PurchaseDate time.Time `json:"purchaseDate"`
	BuyerAddress string    `json:"address"`
}

// 自分が売った明細を1明細1行で返す
func (u *OrderUsecase) ListVenderSales(ctx context.Context, actor Actor) ([]SalesRow, error) {
	if !actor.Is(model.RoleVender) {
		return nil, errForbidden("Only vender can view seller orders.")
	}

	lines, err := u.orderItemRepo.ListBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, errInternal(err)
	}

	products := map[string]model.Product{}
	addresses := map[string]string{}
	rows := make([]SalesRow, 0, len(lines))

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			//削除済みの商品も名前を出す
			p, err = u.productRepo.FindByIDUnscoped(ctx, l.ProductID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, errInternal(err)
			}
			products[l.ProductID] = p
		}

		addr, ok := addresses[l.BuyerID]
		if !ok {
			buyer, err := u.userRepo.FindByID(ctx, l.BuyerID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, errInternal(err)
			}
			if buyer != nil {
				addr = buyer.Address
			}
			addresses[l.BuyerID] = addr
		}

		rows = append(rows, SalesRow{
			OrderID:      l.OrderID,
			ProductID:    l.ProductID,
			ProductName:  p.Name,
			ImagePath:    p.ImagePath,
			Quantity:     l.Quantity,
			PurchaseDate: l.PurchaseDate,
			BuyerAddress: addr,
		})
	}
	return rows, nil
}

func (u *OrderUsecase) publishCreated(ctx context.Context, o OrderOutput) {
	ev := OrderEvent{Type: "order_created", OrderID: o.ID, BuyerID: o.BuyerID, PurchaseDate: o.PurchaseDate, Items: o.Items}
	if err := u.events.Publish(ctx, TopicOrders, o.ID, ev); err != nil {
		u.log.WithError(err).WithField("order_id", o.ID).Warn("failed to publish order event")
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	if items == nil {
		items = []model.OrderItem{}
	}
	return OrderOutput{
		ID:           o.ID,
		BuyerID:      o.BuyerID,
		PurchaseDate: o.PurchaseDate,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}
