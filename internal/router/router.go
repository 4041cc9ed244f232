package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pouicentral/internal/auth"
	"pouicentral/internal/handler"
)

// Register wires routes and middleware.
func Register(e *echo.Echo, sessions *auth.SessionManager, accounts *handler.AccountHandler) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// Public routes
	e.GET("/", accounts.Index)
	e.GET("/signup", accounts.ShowSignup)
	e.POST("/signup", accounts.Signup)
	e.GET("/login", accounts.ShowLogin)
	e.POST("/login", accounts.Login)
	e.GET("/logout", accounts.Logout)

	// Secured routes (require a valid session cookie)
	secured := e.Group("", sessions.Middleware())
	secured.GET("/home", accounts.Home)
	secured.GET("/settings", accounts.ShowSettings)
	secured.POST("/settings", accounts.UpdateSettings)
	secured.POST("/settings/delete", accounts.DeleteAccount)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
