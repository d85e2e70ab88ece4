package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"storefront/middlewares"
	"storefront/models"
	"storefront/services"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func recordOperation(c *gin.Context, operation string) {
	middlewares.RecordOrderOperation(operation, c.Writer.Status())
}

// CreateOrder handles POST /api/orders.
func (h *OrderController) CreateOrder(c *gin.Context) {
	defer recordOperation(c, "create")

	customerID := middlewares.CustomerID(c)
	if customerID == 0 {
		respondError(c, services.ErrUnauthenticated)
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.orders.Create(c.Request.Context(), customerID, services.CreateOrderInput{
		TotalAmount:    req.TotalAmount,
		Items:          req.Items,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out.Message = "Order created successfully"
	c.JSON(http.StatusCreated, out)
}

// ListOrders handles GET /api/orders (admin).
func (h *OrderController) ListOrders(c *gin.Context) {
	defer recordOperation(c, "list_all")

	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListCustomerOrders handles GET /api/customers/orders.
func (h *OrderController) ListCustomerOrders(c *gin.Context) {
	defer recordOperation(c, "list_own")

	orders, err := h.orders.ListForCustomer(c.Request.Context(), middlewares.CustomerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id (admin).
func (h *OrderController) GetOrder(c *gin.Context) {
	defer recordOperation(c, "details")

	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status (admin).
func (h *OrderController) UpdateOrderStatus(c *gin.Context) {
	defer recordOperation(c, "update_status")

	id, ok := orderID(c)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	status, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"id":      id,
		"status":  status,
	})
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return id, true
}
