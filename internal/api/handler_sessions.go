package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrdine-backend/internal/mw"
	"qrdine-backend/internal/store"
)

type ensureSessionRequest struct {
	TableLabel string `json:"table_label"`
	Code       string `json:"code"`
}

// EnsureSession handles POST /api/:tenant/sessions — the programmatic
// equivalent of a scan, without the redirect hint.
func (h *Handler) EnsureSession(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	var req ensureSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel := store.TableSelector{Code: req.Code, Label: req.TableLabel}
	if sel.Empty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "table_label or code is required"})
		return
	}

	h.ensureAndRespond(c, tenant.ID, sel)
}

type startSessionRequest struct {
	TableLabel string `json:"table_label" binding:"required"`
}

// StartSession handles POST /api/:tenant/sessions/start — explicit session
// start by table label. Reuses the table's live session if one exists.
func (h *Handler) StartSession(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.ensureAndRespond(c, tenant.ID, store.TableSelector{Label: req.TableLabel})
}

func (h *Handler) ensureAndRespond(c *gin.Context, tenantID uint, sel store.TableSelector) {
	table, err := h.store.ResolveTable(c.Request.Context(), tenantID, sel)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	session, created, err := h.store.EnsureActiveSession(c.Request.Context(), tenantID, table.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	statusCode := http.StatusOK
	if created {
		statusCode = http.StatusCreated
	}
	c.JSON(statusCode, gin.H{
		"table":   table,
		"session": session,
		"created": created,
	})
}

type closeSessionRequest struct {
	TableLabel string `json:"table_label"`
}

// CloseSession handles POST /api/:tenant/sessions/:session_id/close.
// Closing an already-closed session succeeds and reports it unchanged.
func (h *Handler) CloseSession(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	sessionID, err := strconv.ParseUint(c.Param("session_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	// Body is optional; an empty one means no table check.
	var req closeSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session, err := h.store.CloseSession(c.Request.Context(), tenant.ID, uint(sessionID), req.TableLabel)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}
