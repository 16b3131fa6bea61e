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

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Cache is the catalog listing cache; placing an order changes stock.
	Cache ProductCache
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
	indexes   []int
}

func parseOrderLines(items []transport.CreateOrderItem) ([]orderLine, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	lines := make([]orderLine, 0, len(items))
	for i, it := range items {
		id, err := uuid.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, fmt.Errorf("%w: item %d has an invalid productId", ErrValidation, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d quantity must be at least 1", ErrValidation, i)
		}
		lines = append(lines, orderLine{productID: id, quantity: it.Quantity, indexes: it.ImageIndexes})
	}
	return lines, nil
}

// pickImages keeps the product images named by indexes, dropping out-of-range ones.
// No indexes means no images on the line.
func pickImages(images []string, indexes []int) []string {
	out := make([]string, 0, len(indexes))
	for _, i := range indexes {
		if i >= 0 && i < len(images) {
			out = append(out, images[i])
		}
	}
	return out
}

// CreateOrder validates every line against live stock, then decrements stock and
// stores the order in one transaction. The order keeps a snapshot of prices,
// names, images and the delivery address.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	lines, err := parseOrderLines(req.Items)
	if err != nil {
		return nil, err
	}

	mode := models.PaymentCOD
	if strings.TrimSpace(req.PaymentMode) != "" {
		mode = models.PaymentMode(strings.ToUpper(strings.TrimSpace(req.PaymentMode)))
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: paymentMode must be COD or ONLINE", ErrValidation)
	}
	if req.AddressIndex == nil {
		return nil, fmt.Errorf("%w: addressIndex is required", ErrValidation)
	}

	addresses, err := s.Repo.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: no saved address, add an address first", ErrNotFound)
	}
	idx := *req.AddressIndex
	if idx < 0 || idx >= len(addresses) {
		return nil, fmt.Errorf("%w: address not found", ErrNotFound)
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, ln := range lines {
		ids = append(ids, ln.productID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	requested := make(map[uuid.UUID]int, len(lines))
	items := make([]models.OrderItem, 0, len(lines))
	var total int64
	for i, ln := range lines {
		p, ok := products[ln.productID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, ln.productID)
		}
		requested[p.ID] += ln.quantity
		if requested[p.ID] > p.Quantity {
			return nil, fmt.Errorf("%w: only %d left of %s", ErrOutOfStock, p.Quantity, p.Name)
		}

		unit := p.UnitPrice()
		total += unit * int64(ln.quantity)
		items = append(items, models.OrderItem{
			Line:        i,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    ln.quantity,
			UnitPrice:   unit,
			Images:      pickImages(p.Images, ln.indexes),
		})
	}

	order := models.Order{
		UserID:        user.ID,
		Items:         items,
		CustomerName:  user.Name,
		CustomerPhone: user.PhoneNumber,
		Address:       addresses[idx].AddressFields,
		PaymentMode:   mode,
		Status:        models.OrderStatusPending,
		TotalPrice:    total,
	}

	if err := s.Repo.PlaceOrder(ctx, &order); err != nil {
		var stockErr *repo.StockError
		if errors.As(err, &stockErr) {
			name := stockErr.ProductID.String()
			if p, ok := products[stockErr.ProductID]; ok {
				name = p.Name
			}
			l.Warn("order_stock_race_lost", "product_id", stockErr.ProductID)
			return nil, fmt.Errorf("%w: not enough stock for %s", ErrOutOfStock, name)
		}
		return nil, err
	}

	invalidateProducts(ctx, s.Cache)
	l.Info("order_created", "order_id", order.ID, "user_id", user.ID, "total", total)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.NewEvent("order_created", order))
	return &order, nil
}

func (s *OrderService) loadOwned(ctx context.Context, userID uuid.UUID, orderID string) (*models.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return order, nil
}

// transition applies a compare-and-set status change and reloads the order.
func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, reason string) (*models.Order, error) {
	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, from, to)
	}

	ok, err := s.Repo.TransitionOrder(ctx, order.ID, from, to, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order status changed concurrently, retry", ErrConflict)
	}

	updated, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order_status_changed", "order_id", order.ID, "from", from, "to", to)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.NewEvent("order_"+string(to), map[string]any{
		"orderId": order.ID,
		"userId":  order.UserID,
		"from":    from,
		"to":      to,
		"reason":  reason,
	}))
	return updated, nil
}

// CancelOrder never restores stock.
func (s *OrderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderID string) (*models.Order, error) {
	order, err := s.loadOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, models.OrderStatusCancelled, "")
}

func (s *OrderService) ReturnOrder(ctx context.Context, userID uuid.UUID, req transport.ReturnOrderRequest) (*models.Order, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: return reason is required", ErrValidation)
	}
	order, err := s.loadOwned(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, models.OrderStatusReturned, reason)
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListAllOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListOrders(ctx, st, offset, limit)
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	to := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}
	id, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	return s.transition(ctx, order, to, order.ReturnReason)
}
