package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/middleware"
	"github.com/amara-atelier/atelier-orders-api/models"
	"github.com/amara-atelier/atelier-orders-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Items           []services.OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress    `json:"shipping_address" binding:"required"`
	PaymentMethod   string                    `json:"payment_method" binding:"required"`
	ShippingCharge  float64                   `json:"shipping_charge" binding:"omitempty,gte=0"`
	Discount        float64                   `json:"discount" binding:"omitempty,gte=0"`
	Tax             float64                   `json:"tax" binding:"omitempty,gte=0"`
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// VerifyPaymentRequest represents the request body for payment verification
type VerifyPaymentRequest struct {
	Notes string `json:"notes"`
}

// CancelOrderRequest represents the request body for order cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - places a new order (customers only)
func CreateOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
		return
	}

	if user.Role != "customer" {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only customers can place orders")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	svc := services.NewOrderService(config.GetDB())
	order, err := svc.CreateOrder(services.CreateOrderInput{
		CustomerID:      user.ID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingCharge:  req.ShippingCharge,
		Discount:        req.Discount,
		Tax:             req.Tax,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - customers see their own orders,
// staff see everything
func ListOrders(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
		return
	}

	db := config.GetDB()
	query := db.Preload("Items").Order("created_at DESC")
	if user.Role == "customer" {
		query = query.Where("customer_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown order status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := services.NewOrderService(config.GetDB())
	order, err := svc.GetOrder(orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	// Customers can only see their own orders
	if user.Role == "customer" && order.CustomerID != user.ID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":      order,
			"can_cancel": order.CanCustomerCancel(),
		},
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status (admin only)
func UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	actor := actorName(c)
	svc := services.NewOrderService(config.GetDB())
	order, err := svc.UpdateStatus(orderID, req.Status, req.Note, actor)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// VerifyPayment handles POST /api/v1/orders/:id/verify-payment (admin only)
func VerifyPayment(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	actor := actorName(c)
	svc := services.NewOrderService(config.GetDB())
	order, err := svc.VerifyPayment(orderID, actor, req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - customers may cancel
// only while the order is still pending/verified; admins may cancel any
// non-terminal order
func CancelOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A cancellation reason is required")
		return
	}

	svc := services.NewOrderService(config.GetDB())
	order, err := svc.GetOrder(orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if user.Role == "customer" {
		if order.CustomerID != user.ID {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this order")
			return
		}
		if !order.CanCustomerCancel() {
			respondError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", "This order can no longer be cancelled; contact the atelier")
			return
		}
	}

	order, err = svc.CancelOrder(orderID, req.Reason, user.Name)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id (admin only). Orders are
// never hard-deleted; the record is soft-deleted and kept for bookkeeping.
func DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondDomainError(c, err)
		return
	}

	if err := db.Delete(&order).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order archived",
	})
}

// parseIDParam parses the :id URL parameter, responding with a validation
// error on failure
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid ID parameter")
		return 0, false
	}
	return uint(id), true
}

// actorName resolves the display name of the authenticated user, falling
// back to their Auth0 subject
func actorName(c *gin.Context) string {
	if user, err := middleware.CurrentUser(c); err == nil {
		return user.Name
	}
	auth0ID, _ := middleware.GetUserID(c)
	return auth0ID
}
