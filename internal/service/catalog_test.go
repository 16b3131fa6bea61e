package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/cache"
	"github.com/halwiz/storefront/pkg/events"
)

func newCatalogService(t *testing.T) (*CatalogService, *fakeImageStore, *events.Recorder) {
	images := &fakeImageStore{}
	rec := &events.Recorder{}
	return &CatalogService{Repo: newTestRepo(t), Images: images, Events: rec}, images, rec
}

func validCreateForm() transport.CreateProductForm {
	return transport.CreateProductForm{
		Name:            "Masala Peanuts",
		Quantity:        ptr(10),
		OriginalPrice:   ptr(int64(100)),
		DiscountPercent: ptr(20),
		Description:     "spicy",
		Category:        "namkeen",
	}
}

func TestCreateProduct(t *testing.T) {
	s, images, rec := newCatalogService(t)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, validCreateForm(), []ImageUpload{upload("a.jpg"), upload("b.jpg")})
	require.NoError(t, err)
	assert.Equal(t, int64(80), p.DiscountPrice)
	assert.Equal(t, []string{"https://cdn/uploads/a.jpg", "https://cdn/uploads/b.jpg"}, p.Images)
	assert.Len(t, images.names, 2)

	stored, err := s.Repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Images, stored.Images)
	assert.Equal(t, []string{"product_created"}, rec.Types(events.TopicProducts))
}

func TestCreateProduct_Validation(t *testing.T) {
	s, _, _ := newCatalogService(t)
	ctx := context.Background()
	one := []ImageUpload{upload("a.jpg")}

	cases := map[string]struct {
		mutate func(*transport.CreateProductForm)
		images []ImageUpload
	}{
		"missing name":     {func(f *transport.CreateProductForm) { f.Name = " " }, one},
		"missing quantity": {func(f *transport.CreateProductForm) { f.Quantity = nil }, one},
		"negative stock":   {func(f *transport.CreateProductForm) { f.Quantity = ptr(-1) }, one},
		"zero stock":       {func(f *transport.CreateProductForm) { f.Quantity = ptr(0) }, one},
		"percent too high": {func(f *transport.CreateProductForm) { f.DiscountPercent = ptr(101) }, one},
		"no images":        {func(*transport.CreateProductForm) {}, nil},
		"too many images": {func(*transport.CreateProductForm) {}, []ImageUpload{
			upload("1"), upload("2"), upload("3"), upload("4"), upload("5"), upload("6"),
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			form := validCreateForm()
			tc.mutate(&form)
			_, err := s.CreateProduct(ctx, form, tc.images)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateProduct_UploadFailure(t *testing.T) {
	s, images, _ := newCatalogService(t)
	images.fail = true

	_, err := s.CreateProduct(context.Background(), validCreateForm(), []ImageUpload{upload("a.jpg")})
	require.Error(t, err)

	items, err := s.Repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateProduct(t *testing.T) {
	s, _, _ := newCatalogService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Bhujia", 5, 200, 10)

	t.Run("percent wins over price", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{
			ID: p.ID.String(), DiscountPercent: ptr(25), DiscountPrice: ptr(int64(10)),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 25, got.DiscountPercent)
		assert.Equal(t, int64(150), got.DiscountPrice)
	})

	t.Run("price alone derives percent", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), DiscountPrice: ptr(int64(160))}, nil)
		require.NoError(t, err)
		assert.Equal(t, 20, got.DiscountPercent)
		assert.Equal(t, int64(160), got.DiscountPrice)
	})

	t.Run("original price recomputes from stored percent", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), OriginalPrice: ptr(int64(300))}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(240), got.DiscountPrice)
		assert.Equal(t, "Bhujia", got.Name)
		assert.Equal(t, 5, got.Quantity)
	})

	t.Run("discount above original", func(t *testing.T) {
		_, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), DiscountPrice: ptr(int64(1000))}, nil)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), Quantity: ptr(-3)}, nil)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("zero quantity marks sold out", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), Quantity: ptr(0)}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: uuid.NewString(), Name: ptr("x")}, nil)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("images are left alone when not mentioned", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{ID: p.ID.String(), Name: ptr("Aloo Bhujia")}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, got.Images)
	})

	t.Run("kept images then uploads, unknown urls dropped", func(t *testing.T) {
		got, err := s.UpdateProduct(ctx, transport.UpdateProductForm{
			ID:             p.ID.String(),
			ExistingImages: []string{"https://cdn/b.jpg", "https://evil/x.jpg"},
		}, []ImageUpload{upload("c.jpg")})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn/b.jpg", "https://cdn/uploads/c.jpg"}, got.Images)
	})
}

func TestDeleteProduct(t *testing.T) {
	s, _, rec := newCatalogService(t)
	ctx := context.Background()
	p := seedProduct(t, s.Repo, "Chakli", 1, 50, 0)

	require.NoError(t, s.DeleteProduct(ctx, p.ID.String()))
	require.ErrorIs(t, s.DeleteProduct(ctx, p.ID.String()), ErrNotFound)
	require.ErrorIs(t, s.DeleteProduct(ctx, ""), ErrValidation)
	assert.Equal(t, []string{"product_deleted"}, rec.Types(events.TopicProducts))
}

func TestListProducts_Cache(t *testing.T) {
	s, _, _ := newCatalogService(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb, err := cache.NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	s.Cache = cache.New(rdb, "storefront:")
	s.CacheTTL = time.Minute

	seedProduct(t, s.Repo, "Mathri", 3, 40, 0)

	first, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists("storefront:"+productsCacheKey))

	// a row written behind the service's back stays invisible until invalidation
	seedProduct(t, s.Repo, "Shakarpara", 3, 40, 0)
	cached, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = s.CreateProduct(ctx, validCreateForm(), []ImageUpload{upload("a.jpg")})
	require.NoError(t, err)
	assert.False(t, mr.Exists("storefront:"+productsCacheKey))

	all, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListProducts_CacheDroppedByOrder(t *testing.T) {
	s, _, _ := newCatalogService(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb, err := cache.NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	s.Cache = cache.New(rdb, "storefront:")
	s.CacheTTL = time.Minute
	orders := &OrderService{Repo: s.Repo, Cache: s.Cache}

	user := seedUser(t, s.Repo, "buyer@example.com")
	seedAddress(t, s.Repo, user.ID, "Pune")
	p := seedProduct(t, s.Repo, "Namak Para", 10, 100, 20)

	before, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, 10, before[0].Quantity)

	_, err = orders.CreateOrder(ctx, user, orderReq(transport.CreateOrderItem{ProductID: p.ID.String(), Quantity: 3}))
	require.NoError(t, err)
	assert.False(t, mr.Exists("storefront:"+productsCacheKey))

	after, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 7, after[0].Quantity)
}

func TestListProducts_NewestFirst(t *testing.T) {
	s, _, _ := newCatalogService(t)
	ctx := context.Background()

	older := models.Product{Name: "old", Quantity: 1, OriginalPrice: 1, DiscountPrice: 1, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, s.Repo.CreateProduct(ctx, &older))
	newer := seedProduct(t, s.Repo, "new", 1, 1, 0)

	items, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
}
