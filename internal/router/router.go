// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelarde/medtrack/internal/config"
	"github.com/avelarde/medtrack/internal/handler"
	"github.com/avelarde/medtrack/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
// Currently it exposes only a health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the public authentication routes under
// /v1/auth: register, login, both refresh flavors and the
// refresh-token variant of logout. The all-sessions logout and /me
// live on the protected group in RegisterAPI.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Revokes the session of the refresh token in the body. No JWT
	// required, so a client with an expired access token can still log out.
	g.POST("/logout", a.Logout)
}

// RegisterAPI wires every protected endpoint under /v1. The group runs
// the JWT middleware followed by the Redis token-bucket rate limiter;
// the computed day plan additionally goes through the response cache.
// A nil Redis client quietly disables both the limiter and the cache.
func RegisterAPI(
	e *echo.Echo,
	a *handler.AuthHandler,
	m *handler.MedicationHandler,
	cons *handler.ConsumptionHandler,
	n *handler.NotificationHandler,
	jwtSecret string,
	rdb *redis.Client,
) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	v1.GET("/me", a.Me)
	v1.POST("/logout", a.Logout)

	meds := v1.Group("/medications")
	meds.GET("", m.List)
	meds.POST("", m.Create)
	// Day plan: medications active on the date expanded into dose
	// occurrences grouped by clock time. Short-TTL cached; writes to
	// medications make a cached plan stale for at most the cache TTL.
	meds.GET("/date/:date", m.ScheduleByDate, cache)
	meds.GET("/:id", m.Get)
	meds.PUT("/:id", m.Update)
	meds.DELETE("/:id", m.Delete)

	c := v1.Group("/consumptions")
	c.POST("", cons.Record)
	c.GET("/date/:date", cons.ListByDate)
	// Single occurrence lookup: ?medication_id=&date=YYYY-MM-DD&time=HH:mm.
	// A 404 means never recorded, which is distinct from consumed=false.
	c.GET("", cons.Get)

	notif := v1.Group("/notifications")
	notif.GET("", n.List)
	notif.GET("/unread-count", n.UnreadCount)
	notif.PUT("/read-all", n.MarkAllRead)
	notif.PUT("/:id/read", n.MarkRead)
	notif.DELETE("/:id", n.Delete)
}
