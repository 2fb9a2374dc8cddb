package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"
)

const (
	msgCartItemNotFound   = "Cart item not found."
	msgProductIDRequired  = "productId is required."
	msgQuantityNotInteger = "quantity must be a whole number."
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	idGen        IDGenerator
	clock        Clock
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	idGen IDGenerator,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		idGen:        idGen,
		clock:        clock,
	}
}

// カート表示用の商品情報
type CartProduct struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImagePath string  `json:"imagePath"`
	IsOnSale  bool    `json:"isOnSale"`
}

// 商品が削除済みなら Product=nil, ProductMissing=true
type CartLine struct {
	ID             string       `json:"id"`
	ProductID      string       `json:"productId"`
	Quantity       int64        `json:"quantity"`
	Product        *CartProduct `json:"product"`
	ProductMissing bool         `json:"productMissing"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (u *CartUsecase) Get(ctx context.Context, actor Actor) ([]CartLine, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}

	items, err := u.cartItemRepo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, errInternal(err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		line := CartLine{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		}
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		switch {
		case err == nil:
			line.Product = &CartProduct{Name: p.Name, Price: p.Price, ImagePath: p.ImagePath, IsOnSale: p.IsOnSale}
		case errors.Is(err, repo.ErrNotFound):
			line.ProductMissing = true
		default:
			return nil, errInternal(err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// quantity未指定は1。同じ商品は数量を加算する
func (u *CartUsecase) Add(ctx context.Context, actor Actor, productID string, quantity NumberInput) (model.CartItem, error) {
	if err := requireBuyer(actor); err != nil {
		return model.CartItem{}, err
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.CartItem{}, errValidation(msgProductIDRequired)
	}

	qty := int64(1)
	if quantity.Present {
		if !quantity.finite() || quantity.Value <= 0 {
			return model.CartItem{}, errValidation("quantity must be a positive number.")
		}
		if !quantity.whole() {
			return model.CartItem{}, errValidation(msgQuantityNotInteger)
		}
		qty = int64(quantity.Value)
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, errNotFound(msgProductNotFound)
	}
	if err != nil {
		return model.CartItem{}, errInternal(err)
	}
	if !p.IsOnSale {
		return model.CartItem{}, errValidation("Product is not on sale.")
	}

	now := u.clock.Now()
	item, err := u.cartItemRepo.Upsert(ctx, model.CartItem{
		ID:        u.idGen.NewID(),
		BuyerID:   actor.UserID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.CartItem{}, errInternal(err)
	}
	return item, nil
}

func (u *CartUsecase) Remove(ctx context.Context, actor Actor, productID string) (model.CartItem, error) {
	if err := requireBuyer(actor); err != nil {
		return model.CartItem{}, err
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.CartItem{}, errValidation(msgProductIDRequired)
	}

	item, err := u.cartItemRepo.DeleteByBuyerAndProduct(ctx, actor.UserID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, errNotFound(msgCartItemNotFound)
	}
	if err != nil {
		return model.CartItem{}, errInternal(err)
	}
	return item, nil
}

// Removed=true はquantity<=0で明細を消した
type SetQuantityResult struct {
	Item    model.CartItem
	Removed bool
}

func (u *CartUsecase) SetQuantity(ctx context.Context, actor Actor, productID string, quantity NumberInput) (SetQuantityResult, error) {
	if err := requireBuyer(actor); err != nil {
		return SetQuantityResult{}, err
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return SetQuantityResult{}, errValidation(msgProductIDRequired)
	}
	if !quantity.Present {
		return SetQuantityResult{}, errValidation("quantity is required.")
	}
	if !quantity.finite() {
		return SetQuantityResult{}, errValidation("quantity must be a number.")
	}

	if _, err := u.cartItemRepo.FindByBuyerAndProduct(ctx, actor.UserID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return SetQuantityResult{}, errNotFound(msgCartItemNotFound)
		}
		return SetQuantityResult{}, errInternal(err)
	}

	// 0以下は削除扱い（エラーにしない）
	if quantity.Value <= 0 {
		item, err := u.cartItemRepo.DeleteByBuyerAndProduct(ctx, actor.UserID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return SetQuantityResult{}, errNotFound(msgCartItemNotFound)
		}
		if err != nil {
			return SetQuantityResult{}, errInternal(err)
		}
		return SetQuantityResult{Item: item, Removed: true}, nil
	}

	if !quantity.whole() {
		return SetQuantityResult{}, errValidation(msgQuantityNotInteger)
	}

	item, err := u.cartItemRepo.SetQuantity(ctx, actor.UserID, productID, int64(quantity.Value))
	if errors.Is(err, repo.ErrNotFound) {
		return SetQuantityResult{}, errNotFound(msgCartItemNotFound)
	}
	if err != nil {
		return SetQuantityResult{}, errInternal(err)
	}
	return SetQuantityResult{Item: item}, nil
}

// 自分のカートを空にする（削除した件数を返す）
func (u *CartUsecase) Clear(ctx context.Context, actor Actor) (int64, error) {
	if err := requireBuyer(actor); err != nil {
		return 0, err
	}
	n, err := u.cartItemRepo.DeleteAllByBuyer(ctx, actor.UserID)
	if err != nil {
		return 0, errInternal(err)
	}
	return n, nil
}

func requireBuyer(actor Actor) error {
	if !actor.Is(model.RoleBuyer) {
		return errForbidden("Only buyer can operate cart.")
	}
	return nil
}
