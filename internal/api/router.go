package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"qrdine-backend/config"
	"qrdine-backend/internal/mw"
	"qrdine-backend/internal/notification"
	"qrdine-backend/internal/payment"
	"qrdine-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(srvCfg *config.ServerConfig, s store.Store, webpushOptions *webpush.Options, gateway payment.Gateway, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, webpushOptions, gateway, pool)

	// Rate limit: rps from config, with a burst of at least 5
	limit := rate.Limit(srvCfg.RateLimitPerSec)
	burst := int(srvCfg.RateLimitPerSec) / 2
	if burst < 5 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(limit, burst)

	// Overview cache: short TTL, the dashboard polls aggressively
	cacheStore := cache.New(30*time.Second, 5*time.Minute)
	caching := mw.Cache(cacheStore, time.Duration(srvCfg.CacheTTLSeconds)*time.Second)

	// All routes live under a tenant context.
	api := r.Group("/api/:tenant")
	api.Use(rateLimiter, mw.Tenant(db))
	{
		// Scan entry point and session lifecycle
		api.GET("/scan", handler.ResolveAndBindScan)
		api.POST("/sessions", handler.EnsureSession)
		api.POST("/sessions/start", handler.StartSession)
		api.POST("/sessions/:session_id/close", handler.CloseSession)

		// Order ledger
		api.POST("/orders", handler.PlaceOrder)
		api.PATCH("/orders/:order_id/status", handler.UpdateOrderStatus)
		api.PATCH("/orders/:order_id/payment", handler.UpdatePaymentStatus)
		api.POST("/orders/:order_id/payment/confirm", handler.ConfirmPayment)
		api.PATCH("/items/:item_id/status", handler.UpdateItemStatus)

		// Dashboard
		api.GET("/overview", caching, handler.GetTableOverview)

		// Staff push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
