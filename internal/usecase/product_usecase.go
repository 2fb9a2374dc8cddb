package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	msgProductNotFound = "Product not found."
	msgInvalidPrice    = "price must be a non-negative number."
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	images      ImageStore
	events      EventPublisher
	idGen       IDGenerator
	clock       Clock
	audit       auditRecorder
	log         logrus.FieldLogger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
	images ImageStore,
	events EventPublisher,
	idGen IDGenerator,
	clock Clock,
	log logrus.FieldLogger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		images:      images,
		events:      events,
		idGen:       idGen,
		clock:       clock,
		audit:       auditRecorder{auditRepo: auditRepo, idGen: idGen, clock: clock, log: log},
		log:         log,
	}
}

// アップロードされた画像
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateProductInput struct {
	Name        string
	Price       NumberInput
	Description string
	IsOnSale    *bool
	Image       *ImageUpload
}

// product_events に流すイベント
type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productId"`
	SellerID  string    `json:"sellerId"`
	ActorID   string    `json:"actorId"`
	At        time.Time `json:"at"`
}

// チェック順: 必須項目 → price → 画像
func (u *ProductUsecase) Create(ctx context.Context, actor Actor, in CreateProductInput) (model.Product, error) {
	if !actor.Is(model.RoleVender) {
		return model.Product{}, errForbidden("Only vender can create products.")
	}

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || !in.Price.Present || description == "" {
		return model.Product{}, errValidation("name, price and description are required.")
	}
	if !in.Price.finite() || in.Price.Value < 0 {
		return model.Product{}, errValidation(msgInvalidPrice)
	}
	if in.Image == nil || in.Image.Body == nil {
		return model.Product{}, errValidation("Product image is required.")
	}

	isOnSale := true
	if in.IsOnSale != nil {
		isOnSale = *in.IsOnSale
	}

	imagePath, err := u.images.Save(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
	if err != nil {
		return model.Product{}, errInternal(err)
	}

	now := u.clock.Now()
	p := model.Product{
		ID:          u.idGen.NewID(),
		SellerID:    actor.UserID,
		Name:        name,
		Price:       in.Price.Value,
		ImagePath:   imagePath,
		Description: description,
		IsOnSale:    isOnSale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.productRepo.Create(ctx, &p); err != nil {
		return model.Product{}, errInternal(err)
	}

	u.publish(ctx, "product_created", p, actor)
	return p, nil
}

// 送られた項目だけ更新する
type UpdateProductInput struct {
	Name        *string
	Price       NumberInput
	Description *string
	IsOnSale    *bool
}

func (in UpdateProductInput) empty() bool {
	return in.Name == nil && !in.Price.Present && in.Description == nil && in.IsOnSale == nil
}

func (u *ProductUsecase) Update(ctx context.Context, actor Actor, productID string, in UpdateProductInput) (model.Product, error) {
	if !actor.Is(model.RoleVender) {
		return model.Product{}, errForbidden("Only vender can update products.")
	}
	if in.empty() {
		return model.Product{}, errValidation("No fields to update.")
	}

	p, err := u.findOwned(ctx, actor, productID)
	if err != nil {
		return model.Product{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.Product{}, errValidation("name cannot be empty.")
		}
		p.Name = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return model.Product{}, errValidation("description cannot be empty.")
		}
		p.Description = description
	}
	if in.Price.Present {
		if !in.Price.finite() || in.Price.Value < 0 {
			return model.Product{}, errValidation(msgInvalidPrice)
		}
		p.Price = in.Price.Value
	}
	if in.IsOnSale != nil {
		p.IsOnSale = *in.IsOnSale
	}
	p.UpdatedAt = u.clock.Now()

	if err := u.productRepo.Update(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, errNotFound(msgProductNotFound)
		}
		return model.Product{}, errInternal(err)
	}
	return p, nil
}

// 販売中/停止の切り替え
func (u *ProductUsecase) SetAvailability(ctx context.Context, actor Actor, productID string, isOnSale *bool) (model.Product, error) {
	if isOnSale == nil {
		return model.Product{}, errValidation("isOnSale is required.")
	}
	return u.Update(ctx, actor, productID, UpdateProductInput{IsOnSale: isOnSale})
}

// 出品者本人か管理者だけが削除できる
func (u *ProductUsecase) Delete(ctx context.Context, actor Actor, productID string) (model.Product, error) {
	p, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}

	switch {
	case actor.Is(model.RoleAdmin):
	case actor.Is(model.RoleVender) && p.SellerID == actor.UserID:
	default:
		return model.Product{}, errForbidden("You can only delete your own products.")
	}

	//画像ファイルは消さない
	if err := u.productRepo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, errNotFound(msgProductNotFound)
		}
		return model.Product{}, errInternal(err)
	}

	if actor.Is(model.RoleAdmin) {
		u.audit.record(ctx, actor, model.AuditActionDeleteProduct, model.AuditResourceProduct, p.ID,
			map[string]any{"name": p.Name, "sellerId": p.SellerID, "price": p.Price},
			nil,
		)
	}
	u.publish(ctx, "product_deleted", p, actor)
	return p, nil
}

// 公開（新しい順）
func (u *ProductUsecase) ListAll(ctx context.Context, onSale *bool) ([]model.Product, error) {
	items, err := u.productRepo.List(ctx, repo.ProductListQuery{OnSale: onSale})
	if err != nil {
		return nil, errInternal(err)
	}
	return items, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, productID string) (model.Product, error) {
	return u.find(ctx, productID)
}

func (u *ProductUsecase) ListMine(ctx context.Context, actor Actor) ([]model.Product, error) {
	if !actor.Is(model.RoleVender) {
		return nil, errForbidden("Only vender can view own products.")
	}
	items, err := u.productRepo.List(ctx, repo.ProductListQuery{SellerID: actor.UserID})
	if err != nil {
		return nil, errInternal(err)
	}
	return items, nil
}

func (u *ProductUsecase) find(ctx context.Context, productID string) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, errNotFound(msgProductNotFound)
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, errNotFound(msgProductNotFound)
	}
	if err != nil {
		return model.Product{}, errInternal(err)
	}
	return p, nil
}

// 存在確認＋所有チェック（他人の商品なら403）
func (u *ProductUsecase) findOwned(ctx context.Context, actor Actor, productID string) (model.Product, error) {
	p, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}
	if p.SellerID != actor.UserID {
		return model.Product{}, errForbidden("You can only modify your own products.")
	}
	return p, nil
}

func (u *ProductUsecase) publish(ctx context.Context, typ string, p model.Product, actor Actor) {
	ev := ProductEvent{Type: typ, ProductID: p.ID, SellerID: p.SellerID, ActorID: actor.UserID, At: u.clock.Now()}
	if err := u.events.Publish(ctx, TopicProducts, p.ID, ev); err != nil {
		u.log.WithError(err).WithField("product_id", p.ID).Warn("failed to publish product event")
	}
}
