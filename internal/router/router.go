package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inkwell-journal/internal/handler"
	"github.com/iliyamo/inkwell-journal/internal/middleware"
)

// RegisterRoutes registers routes that need neither a session nor a
// handler struct: the health check and the mood/tag vocabulary.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/v1/vocabulary", handler.Vocabulary)
}

// RegisterAuth registers the session endpoints under /v1/auth.  Everything
// except the password change is public.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/login-pin", a.LoginPin)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	g.POST("/password", a.ChangePassword, middleware.JWTAuth(jwtSecret))
}

// JournalRoutes carries the handlers and route-specific middleware for the
// authenticated journal API.  Cache and UnlockLimit may be nil.
type JournalRoutes struct {
	Entries     *handler.EntryHandler
	Analytics   *handler.AnalyticsHandler
	JWTSecret   string
	Cache       echo.MiddlewareFunc
	UnlockLimit echo.MiddlewareFunc
}

// RegisterJournal registers /v1/entries and /v1/analytics behind JWTAuth.
// Static segments (search, export, id) are registered alongside :day; Echo
// prefers static matches so they never reach the day handlers.
func RegisterJournal(e *echo.Echo, r JournalRoutes) {
	v1 := e.Group("/v1", middleware.JWTAuth(r.JWTSecret))

	entries := v1.Group("/entries")
	entries.GET("", r.Entries.List)
	entries.GET("/search", r.Entries.Search)
	entries.GET("/export", r.Entries.Export)
	entries.GET("/id/:id", r.Entries.GetByID)
	entries.DELETE("/id/:id", r.Entries.DeleteByID)
	entries.PUT("/:day", r.Entries.Put)
	entries.GET("/:day", r.Entries.GetByDay)
	entries.DELETE("/:day", r.Entries.DeleteByDay)
	entries.POST("/:day/lock", r.Entries.Lock)
	entries.POST("/:day/unlock", r.Entries.Unlock, optional(r.UnlockLimit)...)

	analytics := v1.Group("/analytics", optional(r.Cache)...)
	analytics.GET("/moods", r.Analytics.Moods)
	analytics.GET("/tags", r.Analytics.Tags)
	analytics.GET("/word-counts", r.Analytics.WordCounts)
	analytics.GET("/streak", r.Analytics.Streak)
}

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}
