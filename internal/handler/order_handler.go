package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sva/internal/domain"
	"sva/internal/service"
)

// OrderHandler handles purchase order endpoints.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /api/v1/orders
// @Summary List purchase orders
// @Tags orders
// @Produce json
// @Param status query string false "Filter by status" Enums(pending_triage, awaiting_delivery, partial_delivery, full_delivery, finalized, declined)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PurchaseOrder,meta=PagMeta} "List of orders"
// @Failure 400 {object} ErrorResponseBody "Unknown status"
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	status := domain.OrderStatus(c.Query("status"))

	orders, total, err := h.orderService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, orders, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/orders/:id
// @Summary Get purchase order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} Response{data=service.OrderWithItems} "Order with items"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}

// UpdateStatus handles POST /api/v1/orders/:id/status
// @Summary Move a purchase order through its workflow
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param request body UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} Response{data=domain.PurchaseOrder} "Updated order"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 409 {object} ErrorResponseBody "Transition not allowed"
// @Router /orders/{id}/status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}

// Receive handles POST /api/v1/orders/:id/receive
// @Summary Record received quantities for a purchase order
// @Description Stores the cumulative quantity received per item and moves the order to partial_delivery while any item is short, or to full_delivery otherwise.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param request body ReceiveOrderRequest true "Received quantities"
// @Success 200 {object} Response{data=service.OrderWithItems} "Order with updated items"
// @Failure 400 {object} ErrorResponseBody "Invalid request or nothing received"
// @Failure 404 {object} ErrorResponseBody "Order or item not found"
// @Failure 409 {object} ErrorResponseBody "Order is not awaiting delivery"
// @Router /orders/{id}/receive [post]
func (h *OrderHandler) Receive(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req ReceiveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "items are required")
		return
	}

	receipts := make([]domain.ItemReceipt, 0, len(req.Items))
	for _, it := range req.Items {
		receipts = append(receipts, domain.ItemReceipt{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	order, err := h.orderService.Receive(c.Request.Context(), id, receipts)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}
