// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	notifyTimeout = 10 * time.Second
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager           repository.TransactionManager
	orderRepo           repository.OrderRepository
	deviceRepo          repository.DeviceRepository
	notificationService service.NotificationService
	realtime            service.RealtimeGateway
	logger              *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager           repository.TransactionManager
	OrderRepo           repository.OrderRepository
	DeviceRepo          repository.DeviceRepository
	NotificationService service.NotificationService `optional:"true"`
	Realtime            service.RealtimeGateway
	Logger              *slog.Logger
}

// NewOrderService is the constructor for orderService. It receives all dependencies as interfaces.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager:           params.TxManager,
		orderRepo:           params.OrderRepo,
		deviceRepo:          params.DeviceRepo,
		notificationService: params.NotificationService,
		realtime:            params.Realtime,
		logger:              params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder validates the requested lines against the product catalog,
// snapshots prices and creates the order in the processing state.
func (srv *orderService) CreateOrder(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	srv.log(ctx).Info("Creating order", slog.Any("customerID", input.CustomerID), slog.Int("items", len(input.Items)))

	if len(input.Items) == 0 {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument.WrapMessage("order must contain at least one item"), "order rejected")
	}

	var createdOrder *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()
		orderRepo := repoFactory.OrderRepo()

		// 1. Load every referenced product in one round trip.
		productIDs := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			productIDs = append(productIDs, item.ProductID)
		}

		products, err := productRepo.FindByIDs(ctx, productIDs)
		if err != nil {
			return errors.Wrap(err, "failed to load products for order")
		}

		// 2. Validate each line and take price snapshots. Snapshots make
		// later catalog edits invisible to already placed orders.
		order := &entity.Order{
			CustomerID: input.CustomerID,
			Status:     entity.OrderStatusProcessing,
			Notes:      input.Notes,
			Items:      make([]entity.OrderItem, 0, len(input.Items)),
		}

		for _, item := range input.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return errors.Wrapf(domainerrors.ErrEntityNotFound.WrapMessage("product not found"), "product %s", item.ProductID)
			}

			if err := validateOrderLine(product, item.Quantity); err != nil {
				return errors.Wrapf(err, "product %s", item.ProductID)
			}

			lineTotal := product.Price * float64(item.Quantity)
			order.Items = append(order.Items, entity.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				FarmerUserID: product.FarmerUserID,
				UnitPrice:    product.Price,
				Quantity:     item.Quantity,
				LineTotal:    lineTotal,
			})
			order.TotalPrice += lineTotal
		}

		// 3. Persist the order in the initial processing state.
		if err := orderRepo.Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}
		createdOrder = order

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute create order transaction", slog.Any("customerID", input.CustomerID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute create order transaction")
	}

	srv.log(ctx).Debug("Order created", slog.Any("orderID", createdOrder.ID), slog.Any("customerID", createdOrder.CustomerID))

	// 4. Notify the customer asynchronously; delivery failures never fail the order.
	srv.notifyCustomerAsync(ctx, createdOrder.CustomerID,
		"Order received",
		"Your order has been placed and is waiting for confirmation from the farmers.",
		map[string]string{"order_id": createdOrder.ID.String(), "status": createdOrder.Status.String()},
	)

	return createdOrder, nil
}

// validateOrderLine checks one requested line against the product's ordering rules.
func validateOrderLine(product *entity.Product, quantity int) error {
	if !product.IsInStock {
		return domainerrors.ErrInvalidArgument.WrapMessage(fmt.Sprintf("product %q is out of stock", product.Name))
	}
	if quantity < 1 {
		return domainerrors.ErrInvalidArgument.WrapMessage("quantity must be at least 1")
	}
	if quantity < product.MinimumOrderQuantity {
		return domainerrors.ErrInvalidArgument.WrapMessage(
			fmt.Sprintf("minimum order quantity for %q is %d", product.Name, product.MinimumOrderQuantity))
	}
	if product.MaxAvailableQuantity != nil && quantity > *product.MaxAvailableQuantity {
		return domainerrors.ErrInvalidArgument.WrapMessage(
			fmt.Sprintf("only %d units of %q are available", *product.MaxAvailableQuantity, product.Name))
	}

	return nil
}

// GetOrder retrieves an order, enforcing viewer access rules.
func (srv *orderService) GetOrder(ctx context.Context, viewer *entity.Identity, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("order not found"), "order lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	if !canViewOrder(viewer, order) {
		srv.log(ctx).Warn("Order access rejected", slog.Any("orderID", orderID), slog.Any("viewerID", viewer.UserID))

		return nil, errors.Wrap(domainerrors.ErrAccessDenied, "order access rejected")
	}

	return order, nil
}

// canViewOrder reports whether the viewer may see the order: the ordering
// customer, a farmer with produce in the order, or an admin.
func canViewOrder(viewer *entity.Identity, order *entity.Order) bool {
	if viewer.Role == entity.RoleAdmin {
		return true
	}
	if order.CustomerID == viewer.UserID {
		return true
	}

	return order.ContainsProductOfFarmer(viewer.UserID)
}

// UpdateOrderStatus moves a processing order to a terminal state.
// The guarded update in the repository makes the first decision win.
func (srv *orderService) UpdateOrderStatus(ctx context.Context, farmerUserID, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	srv.log(ctx).Info("Updating order status", slog.Any("orderID", orderID), slog.Any("farmerUserID", farmerUserID), slog.Any("status", status))

	if !status.IsTerminal() {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument.WrapMessage("status must be CONFIRMED or REJECTED"), "order decision rejected")
	}

	var decidedOrder *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		// 1. Verify the order exists and the farmer owns produce in it.
		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("order not found"), "order lookup failed")
			}

			return errors.Wrap(err, "failed to find order")
		}

		if !order.ContainsProductOfFarmer(farmerUserID) {
			srv.log(ctx).Warn("Order decision rejected", slog.Any("orderID", orderID), slog.Any("farmerUserID", farmerUserID))

			return errors.Wrap(domainerrors.ErrAccessDenied, "farmer has no produce in this order")
		}

		// 2. Apply the guarded transition.
		if err := orderRepo.UpdateStatusIfProcessing(ctx, orderID, status); err != nil {
			if errors.Is(err, repository.ErrOrderAlreadyDecided) {
				return errors.Wrap(domainerrors.ErrIllegalState.WrapMessage("the order has already been decided"), "order decision rejected")
			}
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("order not found"), "order lookup failed")
			}

			return errors.Wrap(err, "failed to update order status")
		}

		order.Status = status
		decidedOrder = order

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute order status transaction", slog.Any("orderID", orderID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order status transaction")
	}

	srv.log(ctx).Debug("Order decided", slog.Any("orderID", orderID), slog.Any("status", status))

	title := "Order confirmed"
	body := "Your order has been confirmed by the farmer."
	if status == entity.OrderStatusRejected {
		title = "Order rejected"
		body = "Your order has been rejected by the farmer."
	}
	srv.notifyCustomerAsync(ctx, decidedOrder.CustomerID, title, body,
		map[string]string{"order_id": decidedOrder.ID.String(), "status": status.String()})

	return decidedOrder, nil
}

// ListCustomerOrders retrieves a page of the customer's own orders, newest first.
func (srv *orderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, page, size int) (*usecase.OrderPage, error) {
	page, size = normalizePaging(page, size)

	orders, total, err := srv.orderRepo.FindByCustomerID(ctx, customerID, (page-1)*size, size)
	if err != nil {
		srv.log(ctx).Error("Failed to list customer orders", slog.Any("error", err), slog.Any("customerID", customerID))

		return nil, errors.Wrap(err, "failed to list customer orders")
	}

	return buildOrderPage(orders, page, size, total), nil
}

// ListFarmerOrders retrieves a page of orders containing the farmer's produce, newest first.
func (srv *orderService) ListFarmerOrders(ctx context.Context, farmerUserID uuid.UUID, page, size int) (*usecase.OrderPage, error) {
	page, size = normalizePaging(page, size)

	orders, total, err := srv.orderRepo.FindByFarmerUserID(ctx, farmerUserID, (page-1)*size, size)
	if err != nil {
		srv.log(ctx).Error("Failed to list farmer orders", slog.Any("error", err), slog.Any("farmerUserID", farmerUserID))

		return nil, errors.Wrap(err, "failed to list farmer orders")
	}

	return buildOrderPage(orders, page, size, total), nil
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return page, size
}

func buildOrderPage(orders []*entity.Order, page, size int, total int64) *usecase.OrderPage {
	totalPages := int((total + int64(size) - 1) / int64(size))

	return &usecase.OrderPage{
		Orders:     orders,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// notifyCustomerAsync delivers an order notification over the realtime channel
// and as a push to the customer's active devices. Best-effort.
func (srv *orderService) notifyCustomerAsync(ctx context.Context, customerID uuid.UUID, title, body string, data map[string]string) {
	logger := srv.log(ctx)

	go func() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		srv.realtime.Publish(notifyCtx, customerID, service.Event{
			Type:    service.EventNotification,
			Payload: map[string]any{"title": title, "body": body, "data": data},
		})

		if srv.notificationService == nil {
			return
		}

		devices, err := srv.deviceRepo.FindActiveDevicesByUser(notifyCtx, customerID)
		if err != nil {
			logger.Warn("Failed to load devices for order notification", slog.Any("customerID", customerID), slog.Any("error", err))

			return
		}
		if len(devices) == 0 {
			return
		}

		tokens := make([]string, 0, len(devices))
		for _, device := range devices {
			tokens = append(tokens, device.FCMToken)
		}

		_, _, invalidTokens, err := srv.notificationService.SendBatchNotification(notifyCtx, tokens, title, body, data)
		if err != nil {
			logger.Warn("Failed to send order push notification", slog.Any("customerID", customerID), slog.Any("error", err))

			return
		}

		if len(invalidTokens) > 0 {
			if err := srv.deviceRepo.DeactivateByTokens(notifyCtx, invalidTokens); err != nil {
				logger.Warn("Failed to deactivate invalid device tokens", slog.Any("error", err))
			}
		}
	}()
}
