package mw

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

// tenantKey is the context key under which the resolved tenant is stored.
const tenantKey = "mw.tenant"

// Tenant resolves the :tenant path parameter to a tenant record and aborts
// with 404 when it does not exist. Every handler behind this middleware can
// assume a valid tenant context; queries outside it are never issued.
func Tenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("tenant")
		if slug == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenant is required"})
			return
		}

		var tenant model.Tenant
		err := db.First(&tenant, "slug = ?", slug).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown tenant"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve tenant"})
			return
		}

		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// CurrentTenant returns the tenant resolved by the Tenant middleware.
func CurrentTenant(c *gin.Context) model.Tenant {
	return c.MustGet(tenantKey).(model.Tenant)
}
