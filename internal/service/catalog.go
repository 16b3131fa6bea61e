package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/logging"
)

const (
	MaxProductImages = 5
	productsCacheKey = "products:all"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, size int64, body io.ReadSeeker) (string, error)
}

type ProductCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadSeekCloser, error)
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Images   ImageStore
	Cache    ProductCache
	CacheTTL time.Duration
	Events   events.Publisher
}

func (s *CatalogService) CreateProduct(ctx context.Context, form transport.CreateProductForm, images []ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	name := strings.TrimSpace(form.Name)
	desc := strings.TrimSpace(form.Description)
	category := strings.TrimSpace(form.Category)
	if name == "" || form.Quantity == nil || form.OriginalPrice == nil || desc == "" || category == "" {
		return nil, fmt.Errorf("%w: name, quantity, originalPrice, description and category are required", ErrValidation)
	}
	// a new listing starts with stock; updates may later bring it to zero
	if *form.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if *form.OriginalPrice <= 0 {
		return nil, fmt.Errorf("%w: originalPrice must be positive", ErrValidation)
	}
	percent := 0
	if form.DiscountPercent != nil {
		percent = *form.DiscountPercent
	}
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: discountPercent must be between 0 and 100", ErrValidation)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrValidation)
	}
	if len(images) > MaxProductImages {
		return nil, fmt.Errorf("%w: at most %d images are allowed", ErrValidation, MaxProductImages)
	}

	urls, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		Name:            name,
		Quantity:        *form.Quantity,
		OriginalPrice:   *form.OriginalPrice,
		DiscountPercent: percent,
		DiscountPrice:   DiscountPrice(*form.OriginalPrice, percent),
		Description:     desc,
		Category:        category,
		Images:          urls,
	}
	if err := s.Repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}

	l.Info("product_created", "product_id", product.ID)
	s.invalidate(ctx)
	publish(ctx, s.Events, events.TopicProducts, product.ID.String(), events.NewEvent("product_created", product))
	return &product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, form transport.UpdateProductForm, images []ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	if strings.TrimSpace(form.ID) == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrValidation)
	}
	id, err := uuid.Parse(strings.TrimSpace(form.ID))
	if err != nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	if len(images) > MaxProductImages {
		return nil, fmt.Errorf("%w: at most %d images are allowed", ErrValidation, MaxProductImages)
	}

	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}

	if err := applyProductUpdate(product, form); err != nil {
		return nil, err
	}

	if form.ExistingImages != nil || len(images) > 0 {
		kept := keepKnownImages(product.Images, form.ExistingImages)
		if len(kept)+len(images) > MaxProductImages {
			return nil, fmt.Errorf("%w: at most %d images are allowed", ErrValidation, MaxProductImages)
		}
		uploaded, err := s.uploadImages(ctx, images)
		if err != nil {
			return nil, err
		}
		product.Images = append(kept, uploaded...)
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	l.Info("product_updated", "product_id", product.ID)
	s.invalidate(ctx)
	publish(ctx, s.Events, events.TopicProducts, product.ID.String(), events.NewEvent("product_updated", product))
	return product, nil
}

// applyProductUpdate copies supplied fields and keeps the discount invariant.
// discountPercent wins over discountPrice when both are supplied.
func applyProductUpdate(p *models.Product, form transport.UpdateProductForm) error {
	if form.Name != nil {
		name := strings.TrimSpace(*form.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		p.Name = name
	}
	if form.Description != nil {
		p.Description = strings.TrimSpace(*form.Description)
	}
	if form.Category != nil {
		p.Category = strings.TrimSpace(*form.Category)
	}
	if form.Quantity != nil {
		if *form.Quantity < 0 {
			return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
		}
		p.Quantity = *form.Quantity
	}
	if form.OriginalPrice != nil {
		if *form.OriginalPrice <= 0 {
			return fmt.Errorf("%w: originalPrice must be positive", ErrValidation)
		}
		p.OriginalPrice = *form.OriginalPrice
	}

	switch {
	case form.DiscountPercent != nil:
		if *form.DiscountPercent < 0 || *form.DiscountPercent > 100 {
			return fmt.Errorf("%w: discountPercent must be between 0 and 100", ErrValidation)
		}
		p.DiscountPercent = *form.DiscountPercent
		p.DiscountPrice = DiscountPrice(p.OriginalPrice, p.DiscountPercent)
	case form.DiscountPrice != nil:
		if *form.DiscountPrice < 0 || *form.DiscountPrice > p.OriginalPrice {
			return fmt.Errorf("%w: discountPrice must be between 0 and originalPrice", ErrValidation)
		}
		p.DiscountPercent = DiscountPercent(p.OriginalPrice, *form.DiscountPrice)
		p.DiscountPrice = *form.DiscountPrice
	case form.OriginalPrice != nil:
		p.DiscountPrice = DiscountPrice(p.OriginalPrice, p.DiscountPercent)
	}
	return nil
}

// keepKnownImages drops URLs that are not currently attached to the product.
func keepKnownImages(current, requested []string) []string {
	known := make(map[string]struct{}, len(current))
	for _, u := range current {
		known[u] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, u := range requested {
		if _, ok := known[u]; ok {
			out = append(out, u)
			delete(known, u)
		}
	}
	return out
}

func (s *CatalogService) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.Images == nil {
		return nil, errors.New("image storage is not configured")
	}

	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			f, err := img.Open()
			if err != nil {
				return fmt.Errorf("open upload %q: %w", img.Filename, err)
			}
			defer f.Close()

			u, err := s.Images.Upload(gctx, img.Filename, img.ContentType, img.Size, f)
			if err != nil {
				return fmt.Errorf("upload %q: %w", img.Filename, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}
	id, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return err
	}

	s.invalidate(ctx)
	publish(ctx, s.Events, events.TopicProducts, id.String(), events.NewEvent("product_deleted", map[string]any{"productId": id}))
	return nil
}

// ListProducts returns the whole catalog newest first, served from cache when warm.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list_products")

	if s.Cache != nil {
		var cached []models.Product
		ok, err := s.Cache.Get(ctx, productsCacheKey, &cached)
		if err != nil {
			l.Warn("product_cache_read_failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, productsCacheKey, items, s.CacheTTL); err != nil {
			l.Warn("product_cache_write_failed", "error", err)
		}
	}
	return items, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	invalidateProducts(ctx, s.Cache)
}

// invalidateProducts drops the cached listing after any write that changes
// product rows, stock included.
func invalidateProducts(ctx context.Context, c ProductCache) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, productsCacheKey); err != nil {
		logging.FromContext(ctx).Warn("product_cache_invalidate_failed", "error", err)
	}
}
