package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/logging"
)

type RatingService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// AddRating accepts one review per user and product, only from buyers of the product.
func (s *RatingService) AddRating(ctx context.Context, userID uuid.UUID, req transport.AddRatingRequest) (*models.Rating, error) {
	l := logging.FromContext(ctx).With("svc", "rating.add")

	desc := strings.TrimSpace(req.Description)
	if strings.TrimSpace(req.ProductID) == "" || desc == "" {
		return nil, fmt.Errorf("%w: productId and description are required", ErrValidation)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}

	bought, err := s.Repo.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !bought {
		return nil, fmt.Errorf("%w: only customers who ordered this product can rate it", ErrForbidden)
	}

	exists, err := s.Repo.RatingExists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you have already rated this product", ErrConflict)
	}

	rating := models.Rating{UserID: userID, ProductID: productID, Rating: req.Rating, Description: desc}
	if err := s.Repo.CreateRating(ctx, &rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you have already rated this product", ErrConflict)
		}
		return nil, err
	}

	l.Info("rating_added", "product_id", productID, "user_id", userID)
	publish(ctx, s.Events, events.TopicRatings, productID.String(), events.NewEvent("rating_added", rating))
	return &rating, nil
}

func (s *RatingService) ListRatings(ctx context.Context, productID string) ([]models.Rating, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListRatings(ctx, id)
}
