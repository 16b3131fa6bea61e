package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// CartLine is a cart entry joined with the product as it is right now.
type CartLine struct {
	ProductID       uuid.UUID `json:"productId"`
	Name            string    `json:"name"`
	Images          []string  `json:"images"`
	OriginalPrice   int64     `json:"originalPrice"`
	DiscountPrice   int64     `json:"discountPrice"`
	DiscountPercent int       `json:"discountPercent"`
	Quantity        int       `json:"quantity"`
}

type CartAndWishlist struct {
	Cart     []CartLine  `json:"cart"`
	Wishlist []uuid.UUID `json:"wishlist"`
}

func parseProductID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, fmt.Errorf("%w: productId is required", ErrValidation)
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid productId", ErrValidation)
	}
	return id, nil
}

func (s *CartService) AddOrIncrement(ctx context.Context, userID uuid.UUID, productID string) ([]CartLine, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.IncrementCartItem(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) DecrementOrRemove(ctx context.Context, userID uuid.UUID, productID string) ([]CartLine, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DecrementCartItem(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveCompletely(ctx context.Context, userID uuid.UUID, productID string) ([]CartLine, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteCartItem(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, userID)
}

// ToggleWishlist returns the wishlist after the toggle and whether the product was added.
func (s *CartService) ToggleWishlist(ctx context.Context, userID uuid.UUID, productID string) ([]uuid.UUID, bool, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, false, err
	}
	added, err := s.Repo.ToggleWishlist(ctx, userID, id)
	if err != nil {
		return nil, false, err
	}
	ids, err := s.Repo.ListWishlist(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return ids, added, nil
}

// GetCart omits lines whose product no longer exists.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	items, err := s.Repo.ListCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{
			ProductID:       p.ID,
			Name:            p.Name,
			Images:          p.Images,
			OriginalPrice:   p.OriginalPrice,
			DiscountPrice:   p.DiscountPrice,
			DiscountPercent: p.DiscountPercent,
			Quantity:        it.Quantity,
		})
	}
	return lines, nil
}

func (s *CartService) GetCartAndWishlist(ctx context.Context, userID uuid.UUID) (*CartAndWishlist, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.Repo.ListWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist == nil {
		wishlist = []uuid.UUID{}
	}
	return &CartAndWishlist{Cart: cart, Wishlist: wishlist}, nil
}
