package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	Auth           *service.AuthService
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ContactHandler *ContactHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Contacts App v1.0"})
	})

	api := e.Group("/api")

	api.GET("/healthchecker", healthchecker(d.DB))

	// Sensitive endpoints share one in-memory limiter; exceeding it returns 429.
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10))

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register, limiter)
	auth.POST("/login", d.AuthHandler.Login, limiter)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout, RequireAuth(d.Auth))
	auth.POST("/password-reset-request", d.AuthHandler.RequestPasswordReset, limiter)
	auth.POST("/password-reset-confirm", d.AuthHandler.ConfirmPasswordReset, limiter)

	users := api.Group("/users")
	users.GET("/confirmed_email/:token", d.UserHandler.ConfirmEmail)
	users.POST("/request_email", d.UserHandler.RequestEmail)
	users.GET("/me", d.UserHandler.Me, RequireAuth(d.Auth), limiter)
	users.GET("/moderator", d.UserHandler.Moderator, RequireAuth(d.Auth), RequireRole(models.RoleModerator, models.RoleAdmin))
	users.GET("/admin", d.UserHandler.Admin, RequireAuth(d.Auth), RequireRole(models.RoleAdmin))
	users.PATCH("/avatar", d.UserHandler.UpdateAvatar, RequireAuth(d.Auth), RequireRole(models.RoleAdmin))
	users.GET("/:id", d.UserHandler.GetUser, RequireAuth(d.Auth))

	contacts := api.Group("/contacts", RequireAuth(d.Auth))
	contacts.GET("", d.ContactHandler.List)
	contacts.POST("", d.ContactHandler.Create)
	contacts.GET("/search", d.ContactHandler.Search)
	contacts.GET("/birthdays", d.ContactHandler.UpcomingBirthdays)
	contacts.GET("/:id", d.ContactHandler.Get)
	contacts.PUT("/:id", d.ContactHandler.Update)
	contacts.DELETE("/:id", d.ContactHandler.Delete)
}

func healthchecker(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "error connecting to the database")
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "error connecting to the database")
		}
		return c.JSON(http.StatusOK, MessageResponse{Message: "Welcome to the Contacts API"})
	}
}
