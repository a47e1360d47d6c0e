package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrdine-backend/internal/model"
	"qrdine-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint         string `json:"endpoint" binding:"required"`
	P256DH           string `json:"p256dh" binding:"required"`
	Auth             string `json:"auth" binding:"required"`
	SubscribedTables []uint `json:"subscribed_tables"`
}

// PutSubscription creates or replaces a staff dashboard's push
// subscription. Only tables of the current tenant can be watched.
func (h *Handler) PutSubscription(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		TenantID: tenant.ID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var tables []model.Table
		if len(req.SubscribedTables) > 0 {
			if err := tx.Where("tenant_id = ?", tenant.ID).
				Find(&tables, req.SubscribedTables).Error; err != nil {
				return err
			}
		}

		return tx.Model(&subscription).Association("Tables").Replace(&tables)
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DB().Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam extracts a query value without URL decoding; push endpoints
// contain characters the default decoder would mangle.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the table ids a subscription watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().Preload("Tables").
		First(&subscription, "endpoint = ? AND tenant_id = ?", raw, tenant.ID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tableIDs := make([]uint, len(subscription.Tables))
	for i, table := range subscription.Tables {
		tableIDs[i] = table.ID
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_tables": tableIDs})
}

// GetVAPIDPublicKey hands out the public half of the push key pair so the
// dashboard's browser can subscribe.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
