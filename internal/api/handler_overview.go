package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrdine-backend/internal/mw"
	"qrdine-backend/internal/status"
)

// tableVerdictResponse is one dashboard row.
type tableVerdictResponse struct {
	TableID uint         `json:"table_id"`
	Label   string       `json:"label"`
	Color   status.Color `json:"color"`
	Reason  string       `json:"reason"`
}

// GetTableOverview handles GET /api/:tenant/overview. One store call
// yields the counters for every table; classification itself is pure and
// happens here, per requested policy.
func (h *Handler) GetTableOverview(c *gin.Context) {
	tenant := mw.CurrentTenant(c)

	policy := status.Policy(c.DefaultQuery("policy", string(status.PolicyEatLater)))
	if !policy.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "policy must be eat_later or pay_first"})
		return
	}

	states, err := h.store.TableOverview(c.Request.Context(), tenant.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	rows := make([]tableVerdictResponse, 0, len(states))
	for _, st := range states {
		verdict := status.Classify(st.Snapshot, policy)
		rows = append(rows, tableVerdictResponse{
			TableID: st.Table.ID,
			Label:   st.Table.Label,
			Color:   verdict.Color,
			Reason:  verdict.Reason,
		})
	}

	c.JSON(http.StatusOK, gin.H{"policy": policy, "tables": rows})
}
