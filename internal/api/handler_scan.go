package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrdine-backend/internal/mw"
	"qrdine-backend/internal/store"
)

// ResolveAndBindScan handles GET /api/:tenant/scan. It is the physical
// entry point: a diner's phone hits it right after scanning the code on
// the table, and gets back the table, its live session and where to go
// next.
func (h *Handler) ResolveAndBindScan(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	sel := store.TableSelector{
		Code:  c.Query("code"),
		Label: c.Query("table"),
	}
	if sel.Empty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "code or table is required"})
		return
	}

	table, err := h.store.ResolveTable(c.Request.Context(), tenant.ID, sel)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	session, created, err := h.store.EnsureActiveSession(c.Request.Context(), tenant.ID, table.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":    table,
		"session":  session,
		"created":  created,
		"redirect": fmt.Sprintf("/menu?tenant=%s&table=%s&session=%d", tenant.Slug, table.Label, session.ID),
	})
}
