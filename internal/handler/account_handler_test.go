package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pouicentral/internal/auth"
	"pouicentral/internal/handler"
	"pouicentral/internal/model"
	"pouicentral/internal/router"
	"pouicentral/internal/service"
	"pouicentral/internal/view"
)

const cookieName = "poui-session"

// MockAccountService is a mock implementation of service.AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Signup(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	args := m.Called(ctx, firstName, lastName, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) Profile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) UpdateSettings(ctx context.Context, id uuid.UUID, firstName, lastName, email, password string) (*model.User, error) {
	args := m.Called(ctx, id, firstName, lastName, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newApp(t *testing.T, svc service.AccountService) (*echo.Echo, *auth.SessionManager) {
	t.Helper()

	e := echo.New()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer

	sessions := auth.NewSessionManager(cookieName, "test-secret", time.Hour, false)
	router.Register(e, sessions, handler.NewAccountHandler(svc, sessions))
	return e, sessions
}

func postForm(e *echo.Echo, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func signupForm() url.Values {
	return url.Values{
		"firstName": {"A"},
		"lastName":  {"B"},
		"email":     {"a@b.com"},
		"password":  {"x"},
	}
}

func TestSignup(t *testing.T) {
	t.Run("valid payload creates user, sets cookie, redirects home", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Signup", mock.Anything, "A", "B", "a@b.com", "x").
			Return(&model.User{ID: uuid.New(), FirstName: "A", LastName: "B", Email: "a@b.com"}, nil)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/signup", signupForm())

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/home", rec.Header().Get(echo.HeaderLocation))
		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		svc.AssertExpectations(t)
	})

	t.Run("taken email re-renders signup with message, no session", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Signup", mock.Anything, "A", "B", "a@b.com", "x").
			Return(nil, service.ErrEmailTaken)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/signup", signupForm())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email address is already registered")
		assert.Nil(t, sessionCookie(rec))
		svc.AssertExpectations(t)
	})

	t.Run("schema failure collects all field errors with 400", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/signup", url.Values{"email": {"not-an-email"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "FirstName is required")
		assert.Contains(t, body, "LastName is required")
		assert.Contains(t, body, "Password is required")
		assert.Contains(t, body, "Email must be a valid email address")
		svc.AssertNotCalled(t, "Signup")
	})
}

func TestLogin(t *testing.T) {
	t.Run("correct pair sets cookie and redirects home", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "a@b.com", "x").
			Return(&model.User{ID: uuid.New(), Email: "a@b.com"}, nil)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/home", rec.Header().Get(echo.HeaderLocation))
		require.NotNil(t, sessionCookie(rec))
		svc.AssertExpectations(t)
	})

	t.Run("unregistered email re-renders login, no session", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "a@b.com", "x").
			Return(nil, service.ErrEmailNotRegistered)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email address is not registered")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("wrong password re-renders login, no session", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "a@b.com", "bad").
			Return(nil, service.ErrPasswordMismatch)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/login", url.Values{"email": {"a@b.com"}, "password": {"bad"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password mismatch")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("missing fields fail schema validation", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/login", url.Values{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Login")
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears cookie regardless of auth state", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := get(e, "/logout")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
	})
}

func authedCookie(t *testing.T, sessions *auth.SessionManager, userID uuid.UUID) *http.Cookie {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(e.NewContext(req, rec), userID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSettings(t *testing.T) {
	userID := uuid.New()

	t.Run("without session redirects to root", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := get(e, "/settings")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		svc.AssertNotCalled(t, "Profile")
	})

	t.Run("renders current profile", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Profile", mock.Anything, userID).
			Return(&model.User{ID: userID, FirstName: "A", LastName: "B", Email: "a@b.com"}, nil)
		e, sessions := newApp(t, svc)

		rec := get(e, "/settings", authedCookie(t, sessions, userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "a@b.com")
		svc.AssertExpectations(t)
	})

	t.Run("update redirects back to settings", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("UpdateSettings", mock.Anything, userID, "C", "D", "c@d.com", "y").
			Return(&model.User{ID: userID, FirstName: "C", LastName: "D", Email: "c@d.com"}, nil)
		e, sessions := newApp(t, svc)

		form := url.Values{
			"firstName": {"C"},
			"lastName":  {"D"},
			"email":     {"c@d.com"},
			"password":  {"y"},
		}
		rec := postForm(e, "/settings", form, authedCookie(t, sessions, userID))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/settings", rec.Header().Get(echo.HeaderLocation))
		svc.AssertExpectations(t)
	})

	t.Run("store failure re-renders login view", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Profile", mock.Anything, userID).Return(nil, service.ErrAccountNotFound)
		e, sessions := newApp(t, svc)

		rec := get(e, "/settings", authedCookie(t, sessions, userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Account not found")
	})
}

func TestDeleteAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("removes account, clears session, redirects to root", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("DeleteAccount", mock.Anything, userID).Return(nil)
		e, sessions := newApp(t, svc)

		rec := postForm(e, "/settings/delete", url.Values{}, authedCookie(t, sessions, userID))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		svc.AssertExpectations(t)
	})

	t.Run("without session redirects to root", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := postForm(e, "/settings/delete", url.Values{})

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		svc.AssertNotCalled(t, "DeleteAccount")
	})
}

func TestHome(t *testing.T) {
	userID := uuid.New()

	t.Run("greets the authenticated user", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Profile", mock.Anything, userID).
			Return(&model.User{ID: userID, FirstName: "A", LastName: "B", Email: "a@b.com"}, nil)
		e, sessions := newApp(t, svc)

		rec := get(e, "/home", authedCookie(t, sessions, userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "A B")
		svc.AssertExpectations(t)
	})

	t.Run("without session redirects to root", func(t *testing.T) {
		svc := new(MockAccountService)
		e, _ := newApp(t, svc)

		rec := get(e, "/home")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	})
}
