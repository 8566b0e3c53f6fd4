package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/nexusliving/bms/api/handler"
	"github.com/nexusliving/bms/internal/middleware"
)

const apiPrefix = "/api/v1"

type Handlers struct {
	Agreement    *apiHandler.AgreementHandler
	Profile      *apiHandler.ProfileHandler
	Auth         *apiHandler.AuthHandler
	Apartment    *apiHandler.ApartmentHandler
	Coupon       *apiHandler.CouponHandler
	Announcement *apiHandler.AnnouncementHandler
	Stats        *apiHandler.StatsHandler
	Health       *apiHandler.HealthHandler
}

// Guards are applied per route: Auth verifies identity, Admin additionally
// requires the admin role and RateLimit throttles public writes.
type Guards struct {
	Auth      middleware.Middleware
	Admin     middleware.Middleware
	RateLimit middleware.Middleware
}

func New(h Handlers, g Guards) *router.Router {
	r := router.New()
	api := r.Group(apiPrefix)

	authed := g.Auth
	admin := func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return g.Auth(g.Admin(next)) }
	limited := g.RateLimit

	r.GET("/health", h.Health.Check)

	// Auth routes
	api.POST("/auth/login", limited(h.Auth.Login))
	api.POST("/auth/refresh", limited(h.Auth.Refresh))
	api.POST("/auth/logout", authed(h.Auth.Logout))

	// Agreements
	api.POST("/agreements", authed(h.Agreement.Submit))
	api.GET("/agreements", admin(h.Agreement.ListPending))
	api.GET("/agreements/{email}", authed(h.Agreement.FindByRequester))
	api.GET("/agreement/{email}", authed(h.Agreement.FindActive))
	api.PATCH("/agreements/accept/{id}", admin(h.Agreement.Accept))
	api.PATCH("/agreements/reject/{id}", admin(h.Agreement.Reject))
	api.GET("/agreement-history/{id}", admin(h.Agreement.History))

	// Users
	api.POST("/users", limited(h.Profile.Upsert))
	api.GET("/users", admin(h.Profile.List))
	api.GET("/users/{email}", authed(h.Profile.Get))
	api.GET("/users/{email}/role", authed(h.Profile.Role))
	api.PATCH("/users/{email}/demote", admin(h.Profile.Demote))

	// Catalog
	api.GET("/apartments", h.Apartment.List)
	api.GET("/apartments/{id}", h.Apartment.Get)
	api.GET("/coupons", h.Coupon.List)
	api.POST("/coupons", admin(h.Coupon.Create))
	api.PATCH("/coupons/{id}", admin(h.Coupon.SetAvailability))
	api.DELETE("/coupons/{id}", admin(h.Coupon.Delete))
	api.GET("/announcements", authed(h.Announcement.List))
	api.POST("/announcements", admin(h.Announcement.Create))

	api.GET("/stats", admin(h.Stats.Overview))

	return r
}
