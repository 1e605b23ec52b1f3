package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/delivery/http/response"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OrderHandler holds dependencies for order handlers.
type OrderHandler struct {
	uc     usecase.OrderUsecase
	logger *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(uc usecase.OrderUsecase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: logger,
	}
}

type createOrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type createOrderRequest struct {
	Notes string                   `json:"notes"`
	Items []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder places a new order for the authenticated customer.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid order payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.uc.CreateOrder(c.Request().Context(), &usecase.CreateOrderInput{
		CustomerID: identity.UserID,
		Notes:      req.Notes,
		Items:      items,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, newOrderResponse(order))
}

// GetOrder retrieves a single order, subject to the viewer's access rights.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrInvalidArgument.WrapMessage("invalid order id")
	}

	order, err := h.uc.GetOrder(c.Request().Context(), identity, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newOrderResponse(order))
}

// AcceptOrder confirms a processing order on behalf of the farmer.
func (h *OrderHandler) AcceptOrder(c echo.Context) error {
	return h.decideOrder(c, entity.OrderStatusConfirmed)
}

// RejectOrder rejects a processing order on behalf of the farmer.
func (h *OrderHandler) RejectOrder(c echo.Context) error {
	return h.decideOrder(c, entity.OrderStatusRejected)
}

func (h *OrderHandler) decideOrder(c echo.Context, status entity.OrderStatus) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrInvalidArgument.WrapMessage("invalid order id")
	}

	order, err := h.uc.UpdateOrderStatus(c.Request().Context(), identity.UserID, orderID, status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newOrderResponse(order))
}

// ListMyOrders returns a page of the authenticated customer's orders.
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	page, size := pagingParams(c)
	orders, err := h.uc.ListCustomerOrders(c.Request().Context(), identity.UserID, page, size)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newOrderPageResponse(orders))
}

// ListFarmerOrders returns a page of orders containing the farmer's produce.
func (h *OrderHandler) ListFarmerOrders(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	page, size := pagingParams(c)
	orders, err := h.uc.ListFarmerOrders(c.Request().Context(), identity.UserID, page, size)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newOrderPageResponse(orders))
}

// pagingParams reads page and size query parameters. Out-of-range values
// are normalized by the usecase layer.
func pagingParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))

	return page, size
}
