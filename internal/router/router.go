package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ArmaniKE/clinic-back/internal/handler"
	"github.com/ArmaniKE/clinic-back/internal/middleware"
	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/ws"
)

// listCacheTTL bounds how stale the public directory and price list may
// get after an admin edit.
const listCacheTTL = 60 * time.Second

// RegisterRoutes registers routes that do not require authentication:
// the health check and the websocket endpoint used for push updates.
func RegisterRoutes(e *echo.Echo, hub *ws.Hub) {
	e.GET("/healthz", handler.Health)
	e.GET("/ws", ws.Serve(hub))
}

// RegisterAuth registers registration and login under /auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterDirectory registers the doctor and patient resources along with
// the admin user views. The public listings are cached in Redis; rdb may
// be nil, which disables caching.
func RegisterDirectory(e *echo.Echo, d *handler.DoctorHandler, p *handler.PatientHandler, u *handler.UserHandler, rdb *redis.Client, jwtSecret string) {
	cache := middleware.Cache(rdb, listCacheTTL)

	// Guests browse the directory while choosing a doctor.
	e.GET("/doctors", d.List, cache)

	doctors := e.Group("/doctors", middleware.JWTAuth(jwtSecret))
	doctors.GET("/:id", d.Get, middleware.RequireRole(model.RoleAdmin, model.RoleDoctor))
	doctors.POST("", d.Create, middleware.RequireRole(model.RoleAdmin))
	doctors.PUT("/:id", d.Update, middleware.RequireRole(model.RoleAdmin))
	doctors.DELETE("/:id", d.Delete, middleware.RequireRole(model.RoleAdmin))

	patients := e.Group("/patients", middleware.JWTAuth(jwtSecret))
	patients.GET("/me", p.Me, middleware.RequireRole(model.RolePatient))
	patients.PUT("/me", p.UpdateMe, middleware.RequireRole(model.RolePatient))
	patients.GET("", p.List, middleware.RequireRole(model.RoleAdmin))
	patients.POST("", p.Create, middleware.RequireRole(model.RoleAdmin))
	patients.PUT("/:id", p.Update, middleware.RequireRole(model.RoleAdmin))
	patients.DELETE("/:id", p.Delete, middleware.RequireRole(model.RoleAdmin))

	users := e.Group("/users", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	users.GET("", u.List)
	users.PUT("/:id", u.Update)
}

// RegisterServices registers the price list and its admin CRUD.
func RegisterServices(e *echo.Echo, s *handler.ServiceHandler, rdb *redis.Client, jwtSecret string) {
	e.GET("/services", s.List, middleware.Cache(rdb, listCacheTTL))

	admin := e.Group("/services", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("", s.Create)
	admin.PUT("/:id", s.Update)
	admin.DELETE("/:id", s.Delete)
}

// RegisterAppointments registers the booking endpoints. Every route is
// authenticated; per-route role middleware narrows who may call what, and
// ownership checks inside the handlers narrow it further.
func RegisterAppointments(e *echo.Echo, a *handler.AppointmentHandler, jwtSecret string) {
	g := e.Group("/appointments", middleware.JWTAuth(jwtSecret))

	g.POST("", a.Create, middleware.RequireRole(model.RolePatient))
	g.GET("", a.List)
	g.GET("/patient", a.ListMine, middleware.RequireRole(model.RolePatient))
	g.GET("/doctor/:id", a.ListForDoctor, middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	g.GET("/admin/all", a.ListAll, middleware.RequireRole(model.RoleAdmin))
	g.PUT("/:id", a.Update)
	g.DELETE("/:id", a.Cancel)
}

// RegisterBilling registers the payment ledger and the admin dashboard.
func RegisterBilling(e *echo.Echo, p *handler.PaymentHandler, d *handler.DashboardHandler, jwtSecret string) {
	g := e.Group("/payments", middleware.JWTAuth(jwtSecret))
	g.GET("", p.List, middleware.RequireRole(model.RoleAdmin))
	g.GET("/patient/:id", p.ListForPatient, middleware.RequireRole(model.RolePatient, model.RoleAdmin))
	g.POST("", p.Create, middleware.RequireRole(model.RoleAdmin))
	g.PUT("/:id", p.Update, middleware.RequireRole(model.RoleAdmin))
	g.DELETE("/:id", p.Delete, middleware.RequireRole(model.RoleAdmin))

	e.GET("/dashboard/admin", d.Stats,
		middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}
