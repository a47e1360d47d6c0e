package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrdine-backend/internal/model"
	"qrdine-backend/internal/mw"
	"qrdine-backend/internal/payment"
	"qrdine-backend/internal/status"
	"qrdine-backend/internal/store"
)

// PlaceOrder handles POST /api/:tenant/orders. Item-level failures do not
// fail the request: the order is created from the insertable lines and the
// failures ride along as warnings. The response carries the table's color
// under the requested display policy as a hint for the ordering UI.
func (h *Handler) PlaceOrder(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	var in store.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.store.PlaceOrder(c.Request.Context(), tenant.ID, in)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	policy := status.Policy(c.DefaultQuery("policy", string(status.PolicyEatLater)))
	if !policy.Valid() {
		policy = status.PolicyEatLater
	}
	verdict := status.Classify(res.Snapshot, policy)

	c.JSON(http.StatusCreated, gin.H{
		"order":        res.Order,
		"session":      res.Session,
		"table":        res.Table,
		"failed_items": res.FailedItems,
		"color":        verdict.Color,
		"reason":       verdict.Reason,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /api/:tenant/orders/:order_id/status.
// The transition that first makes the order ready also wakes the
// notification workers for the table.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.store.UpdateOrderStatus(c.Request.Context(), tenant.ID, uint(orderID), model.OrderStatus(req.Status))
	if err != nil {
		abortStoreError(c, err)
		return
	}

	if res.BecameReady && h.pool != nil {
		h.pool.Dispatch(res.TableID)
	}

	c.JSON(http.StatusOK, gin.H{"order": res.Order})
}

// UpdateItemStatus handles PATCH /api/:tenant/items/:item_id/status.
func (h *Handler) UpdateItemStatus(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.UpdateItemStatus(c.Request.Context(), tenant.ID, uint(itemID), model.ItemStatus(req.Status))
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// UpdatePaymentStatus handles PATCH /api/:tenant/orders/:order_id/payment —
// the local override path for marking orders paid.
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.store.UpdatePaymentStatus(c.Request.Context(), tenant.ID, uint(orderID), model.PaymentStatus(req.Status))
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ConfirmPayment handles POST /api/:tenant/orders/:order_id/payment/confirm.
// It asks the payment gateway whether the order's transaction settled and,
// if so, marks the order paid.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	orderRef := fmt.Sprintf("%s-%d", tenant.Slug, orderID)
	gwStatus, err := h.gateway.VerifyPayment(c.Request.Context(), orderRef)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if gwStatus != payment.StatusSettled {
		c.JSON(http.StatusOK, gin.H{"payment": gwStatus, "updated": false})
		return
	}

	order, err := h.store.UpdatePaymentStatus(c.Request.Context(), tenant.ID, uint(orderID), model.PaymentPaid)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": gwStatus, "updated": true, "order": order})
}
