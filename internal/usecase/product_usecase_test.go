package usecase_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	products *MockProductRepository
	audits   *MockAuditLogRepository
	images   *memImages
	events   *recordingPublisher
	uc       *usecase.ProductUsecase
}

func newProductFixture() productFixture {
	f := productFixture{
		products: new(MockProductRepository),
		audits:   new(MockAuditLogRepository),
		images:   &memImages{},
		events:   &recordingPublisher{},
	}
	log, _ := testLogger()
	f.uc = usecase.NewProductUsecase(f.products, f.audits, f.images, f.events, &seqIDs{}, fixedClock{testNow}, log)
	return f
}

func image() *usecase.ImageUpload {
	return &usecase.ImageUpload{Filename: "chair.png", ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestProductUsecase_Create_Success(t *testing.T) {
	f := newProductFixture()
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.SellerID == vender.UserID && p.Price == 1200 && p.IsOnSale && p.ImagePath == "/images/chair.png"
	})).Return(nil)

	p, err := f.uc.Create(context.Background(), vender, usecase.CreateProductInput{
		Name: "Chair", Price: usecase.Number(1200), Description: "wooden", Image: image(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chair", p.Name)
	require.Len(t, f.events.sent, 1)
	assert.Equal(t, usecase.TopicProducts, f.events.sent[0].Topic)
	assert.Equal(t, p.ID, f.events.sent[0].Key)
}

func TestProductUsecase_Create_IsOnSaleFalse(t *testing.T) {
	f := newProductFixture()
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool { return !p.IsOnSale })).Return(nil)

	off := false
	p, err := f.uc.Create(context.Background(), vender, usecase.CreateProductInput{
		Name: "Chair", Price: usecase.Number(0), Description: "wooden", IsOnSale: &off, Image: image(),
	})
	require.NoError(t, err)
	assert.False(t, p.IsOnSale)
}

func TestProductUsecase_Create_ValidationOrder(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		in   usecase.CreateProductInput
		msg  string
	}{
		{"missing name", usecase.CreateProductInput{Price: usecase.Number(1), Description: "d", Image: image()}, "name, price and description are required."},
		{"missing price", usecase.CreateProductInput{Name: "n", Description: "d", Image: image()}, "name, price and description are required."},
		{"missing everything but image", usecase.CreateProductInput{}, "name, price and description are required."},
		{"negative price", usecase.CreateProductInput{Name: "n", Price: usecase.Number(-1), Description: "d"}, "price must be a non-negative number."},
		{"nan price", usecase.CreateProductInput{Name: "n", Price: usecase.Number(math.NaN()), Description: "d"}, "price must be a non-negative number."},
		{"unparseable price", usecase.CreateProductInput{Name: "n", Price: usecase.NumberInput{Present: true}, Description: "d"}, "price must be a non-negative number."},
		{"no image", usecase.CreateProductInput{Name: "n", Price: usecase.Number(1), Description: "d"}, "Product image is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, vender, tc.in)
			assertAppError(t, err, usecase.KindValidation, tc.msg)
		})
	}
	assert.Empty(t, f.images.saved)
}

func TestProductUsecase_Create_OnlyVender(t *testing.T) {
	f := newProductFixture()
	_, err := f.uc.Create(context.Background(), buyer, usecase.CreateProductInput{})
	assertAppError(t, err, usecase.KindForbidden, "Only vender can create products.")
}

func TestProductUsecase_Update_OtherVenderForbidden(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", SellerID: "vender-2", Name: "Lamp", Price: 10}, nil)

	name := "Stolen"
	_, err := f.uc.Update(context.Background(), vender, "p-1", usecase.UpdateProductInput{Name: &name})
	assertAppError(t, err, usecase.KindForbidden, "You can only modify your own products.")
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductUsecase_Update(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	f.products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", SellerID: vender.UserID, Name: "Lamp", Description: "old", Price: 10, IsOnSale: true}, nil)
	f.products.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.Name == "Lamp" && p.Price == 25 && p.Description == "old" && p.IsOnSale
	})).Return(nil)

	p, err := f.uc.Update(ctx, vender, "p-1", usecase.UpdateProductInput{Price: usecase.Number(25)})
	require.NoError(t, err)
	assert.Equal(t, 25.0, p.Price)
	assert.Equal(t, testNow, p.UpdatedAt)

	_, err = f.uc.Update(ctx, vender, "p-1", usecase.UpdateProductInput{Price: usecase.Number(-3)})
	assertAppError(t, err, usecase.KindValidation, "price must be a non-negative number.")

	blank := ""
	_, err = f.uc.Update(ctx, vender, "p-1", usecase.UpdateProductInput{Description: &blank})
	assertAppError(t, err, usecase.KindValidation, "description cannot be empty.")

	_, err = f.uc.Update(ctx, vender, "p-1", usecase.UpdateProductInput{})
	assertAppError(t, err, usecase.KindValidation, "No fields to update.")

	_, err = f.uc.Update(ctx, vender, "nope", usecase.UpdateProductInput{Price: usecase.Number(1)})
	assertAppError(t, err, usecase.KindNotFound, "Product not found.")
}

func TestProductUsecase_SetAvailability(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", SellerID: vender.UserID, IsOnSale: true}, nil)
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool { return !p.IsOnSale })).Return(nil)

	_, err := f.uc.SetAvailability(context.Background(), vender, "p-1", nil)
	assertAppError(t, err, usecase.KindValidation, "isOnSale is required.")

	off := false
	p, err := f.uc.SetAvailability(context.Background(), vender, "p-1", &off)
	require.NoError(t, err)
	assert.False(t, p.IsOnSale)
}

func TestProductUsecase_Delete(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	owned := model.Product{ID: "p-1", SellerID: vender.UserID, Name: "Lamp"}
	f.products.On("FindByID", mock.Anything, "p-1").Return(owned, nil)
	f.products.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	f.products.On("Delete", mock.Anything, "p-1").Return(nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteProduct && l.ActorUserID == admin.UserID && l.ResourceID == "p-1"
	})).Return(nil).Once()

	other := usecase.Actor{UserID: "vender-2", Role: model.RoleVender}
	_, err := f.uc.Delete(ctx, other, "p-1")
	assertAppError(t, err, usecase.KindForbidden, "")
	_, err = f.uc.Delete(ctx, buyer, "p-1")
	assertAppError(t, err, usecase.KindForbidden, "")
	_, err = f.uc.Delete(ctx, vender, "nope")
	assertAppError(t, err, usecase.KindNotFound, "Product not found.")

	// 出品者は監査ログなし、管理者は監査ログあり
	_, err = f.uc.Delete(ctx, vender, "p-1")
	require.NoError(t, err)
	_, err = f.uc.Delete(ctx, admin, "p-1")
	require.NoError(t, err)

	f.audits.AssertExpectations(t)
	assert.Len(t, f.events.sent, 2)
}

func TestProductUsecase_PublishFailureDoesNotFail(t *testing.T) {
	f := newProductFixture()
	f.events.err = errDB
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Create(context.Background(), vender, usecase.CreateProductInput{
		Name: "Chair", Price: usecase.Number(1), Description: "d", Image: image(),
	})
	assert.NoError(t, err)
}

func TestProductUsecase_Lists(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	on := true
	f.products.On("List", mock.Anything, repo.ProductListQuery{OnSale: &on}).Return([]model.Product{{ID: "p-2"}, {ID: "p-1"}}, nil)
	f.products.On("List", mock.Anything, repo.ProductListQuery{SellerID: vender.UserID}).Return([]model.Product{{ID: "p-1"}}, nil)

	all, err := f.uc.ListAll(ctx, &on)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.uc.ListMine(ctx, vender)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.uc.ListMine(ctx, buyer)
	assertAppError(t, err, usecase.KindForbidden, "")
}
