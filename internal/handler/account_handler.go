package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"pouicentral/internal/auth"
	apperrors "pouicentral/internal/errors"
	"pouicentral/internal/service"
	"pouicentral/internal/view"
)

// AccountHandler serves the account pages and form posts.
type AccountHandler struct {
	accounts service.AccountService
	sessions *auth.SessionManager
}

// NewAccountHandler creates the handler layer.
func NewAccountHandler(accounts service.AccountService, sessions *auth.SessionManager) *AccountHandler {
	return &AccountHandler{accounts: accounts, sessions: sessions}
}

// SignupRequest is the signup form payload.
type SignupRequest struct {
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required"`
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SettingsRequest is the settings form payload.
type SettingsRequest struct {
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required"`
}

// Index renders the landing page.
func (h *AccountHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "main", view.Data{Title: "Welcome to POUI Central"})
}

// ShowSignup renders the signup form.
func (h *AccountHandler) ShowSignup(c echo.Context) error {
	return c.Render(http.StatusOK, "signup", view.Data{Title: "Sign up for POUI Central"})
}

// Signup registers a new user and starts a session.
func (h *AccountHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "signup", view.Data{
			Title:  "Sign up error",
			Errors: []string{"invalid form payload"},
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "signup", view.Data{
			Title:  "Sign up error",
			Errors: fieldErrors(err),
		})
	}

	user, err := h.accounts.Signup(c.Request().Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return h.renderFailure(c, "signup", "Sign up error", err)
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		return h.renderFailure(c, "signup", "Sign up error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/home")
}

// ShowLogin renders the login form.
func (h *AccountHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login", view.Data{Title: "Login to POUI Central"})
}

// Login authenticates a user and starts a session.
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", view.Data{
			Title:  "Sign in error",
			Errors: []string{"invalid form payload"},
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", view.Data{
			Title:  "Sign in error",
			Errors: fieldErrors(err),
		})
	}

	user, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.renderFailure(c, "login", "Sign in error", err)
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		return h.renderFailure(c, "login", "Sign in error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/home")
}

// Logout clears the session cookie. It never fails, authenticated or not.
func (h *AccountHandler) Logout(c echo.Context) error {
	h.sessions.Revoke(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Home renders the home page for the authenticated user.
func (h *AccountHandler) Home(c echo.Context) error {
	userID, err := h.sessions.UserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	user, err := h.accounts.Profile(c.Request().Context(), userID)
	if err != nil {
		return h.renderFailure(c, "login", "Sign in error", err)
	}
	return c.Render(http.StatusOK, "home", view.Data{Title: "Home", User: user})
}

// ShowSettings renders the settings form pre-filled with the current profile.
func (h *AccountHandler) ShowSettings(c echo.Context) error {
	userID, err := h.sessions.UserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	user, err := h.accounts.Profile(c.Request().Context(), userID)
	if err != nil {
		return h.renderFailure(c, "login", "Sign in error", err)
	}
	return c.Render(http.StatusOK, "settings", view.Data{Title: "Account Settings", User: user})
}

// UpdateSettings overwrites the profile from the settings form.
func (h *AccountHandler) UpdateSettings(c echo.Context) error {
	userID, err := h.sessions.UserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "settings", view.Data{
			Title:  "Settings update error",
			Errors: []string{"invalid form payload"},
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "settings", view.Data{
			Title:  "Settings update error",
			Errors: fieldErrors(err),
		})
	}

	if _, err := h.accounts.UpdateSettings(c.Request().Context(), userID, req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		return h.renderFailure(c, "login", "Settings update error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/settings")
}

// DeleteAccount removes the account and ends the session.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID, err := h.sessions.UserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), userID); err != nil {
		return h.renderFailure(c, "login", "Account deletion error", err)
	}

	h.sessions.Revoke(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// renderFailure funnels any business or store error into a re-rendered form
// carrying only the error's message. The user-visible shape stays uniform;
// the classified kind goes to the log.
func (h *AccountHandler) renderFailure(c echo.Context, page, title string, err error) error {
	log.Printf("%s failed kind=%s: %v", page, apperrors.KindOf(err), err)
	return c.Render(http.StatusOK, page, view.Data{
		Title:  title,
		Errors: []string{err.Error()},
	})
}

// fieldErrors turns validator violations into one message per field. All
// violations are reported, not just the first.
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return msgs
}
