package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error)
	updatePasswordFn func(ctx context.Context, userID, current, next string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, next string) (string, error) {
	return s.updatePasswordFn(ctx, userID, current, next)
}

func (s *stubAuthService) ValidateCredentials(context.Context, string, string) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) ResolveIdentity(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, errors.New("not implemented")
}

type stubAccountService struct {
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	setStatusFn  func(ctx context.Context, id string, u ports.StatusUpdate) (*domain.Account, error)
	deactivateFn func(ctx context.Context, id string) error
}

func (s *stubAccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *stubAccountService) SetStatus(ctx context.Context, id string, u ports.StatusUpdate) (*domain.Account, error) {
	return s.setStatusFn(ctx, id, u)
}

func (s *stubAccountService) Deactivate(ctx context.Context, id string) error {
	return s.deactivateFn(ctx, id)
}

func (s *stubAccountService) EnsureAdmin(context.Context, string, string) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(c echo.Context, id domain.Identity) {
	c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), id)))
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Username != "alice_01" || in.Phone != "+16502530000" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Account:     &domain.Account{ID: "u1", Email: in.Email, Username: in.Username, PasswordHash: "leak", Role: domain.RoleCustomer, IsActive: true},
				AccessToken: "tok",
			}, nil
		},
	}
	h := NewAuthHandler(stub, &stubAccountService{})

	c, rec := newTestContext(http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"Str0ng!Pass","username":"alice_01","phone":"+16502530000"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["accessToken"] != "tok" {
		t.Fatalf("expected access token, got %v", resp["accessToken"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["role"] != "CUSTOMER" || user["isActive"] != true || user["isVerified"] != false {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "leak") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, &stubAccountService{})

	bodies := []string{
		`{"email":"not-an-email","password":"Str0ng!Pass"}`,
		`{"email":"a@example.com","password":"weakpass"}`,
		`{"email":"a@example.com","password":"Str0ng!Pass","username":"ab"}`,
		`{"email":"a@example.com","password":"Str0ng!Pass","phone":"12"}`,
		`{"email":"a@example.com","password":"Str0ng!Pass","firstName":"` + strings.Repeat("x", 51) + `"}`,
	}
	for _, body := range bodies {
		c, _ := newTestContext(http.MethodPost, "/auth/register", body)
		err := h.Register(c)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("body %s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubAccountService{})

	c, _ := newTestContext(http.MethodPost, "/auth/register", `{"email":`)
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(stub, &stubAccountService{})

	c, _ := newTestContext(http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"Str0ng!Pass"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
			if creds.Email != "a@example.com" || creds.Password != "whatever" {
				t.Fatalf("unexpected credentials: %+v", creds)
			}
			return &ports.AuthResult{Account: &domain.Account{ID: "u1", Email: creds.Email}, AccessToken: "tok"}, nil
		},
	}
	h := NewAuthHandler(stub, &stubAccountService{})

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"whatever"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"accessToken":"tok"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountInactive, domain.ErrAccountUnverified, domain.ErrTooManyAttempts} {
		stub := &stubAuthService{
			loginFn: func(context.Context, ports.Credentials) (*ports.AuthResult, error) { return nil, want },
		}
		h := NewAuthHandler(stub, &stubAccountService{})

		c, _ := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"x"}`)
		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	stub := &stubAuthService{
		updatePasswordFn: func(_ context.Context, userID, current, next string) (string, error) {
			if userID != "u1" || current != "Old!Pass1" || next != "New!Pass2" {
				t.Fatalf("unexpected args: %s %s %s", userID, current, next)
			}
			return "password updated successfully", nil
		},
	}
	h := NewAuthHandler(stub, &stubAccountService{})

	c, rec := newTestContext(http.MethodPut, "/auth/password", `{"currentPassword":"Old!Pass1","newPassword":"New!Pass2"}`)
	withIdentity(c, domain.Identity{UserID: "u1"})

	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "password updated successfully") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_UpdatePassword_RequiresIdentity(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubAccountService{})

	c, _ := newTestContext(http.MethodPut, "/auth/password", `{"currentPassword":"Old!Pass1","newPassword":"New!Pass2"}`)
	if err := h.UpdatePassword(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_WeakNewPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubAccountService{})

	c, _ := newTestContext(http.MethodPut, "/auth/password", `{"currentPassword":"Old!Pass1","newPassword":"short"}`)
	withIdentity(c, domain.Identity{UserID: "u1"})

	if err := h.UpdatePassword(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	accounts := &stubAccountService{
		getFn: func(_ context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Email: "a@example.com", Role: domain.RoleSeller}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, accounts)

	c, rec := newTestContext(http.MethodGet, "/auth/me", "")
	withIdentity(c, domain.Identity{UserID: "u7"})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"u7"`) || !strings.Contains(rec.Body.String(), `"role":"SELLER"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestResultLabels(t *testing.T) {
	if got := registerResult(domain.ErrUsernameTaken); got != "conflict" {
		t.Fatalf("registerResult = %q", got)
	}
	if got := loginResult(domain.ErrTooManyAttempts); got != "throttled" {
		t.Fatalf("loginResult = %q", got)
	}
	if got := loginResult(errors.New("boom")); got != "error" {
		t.Fatalf("loginResult = %q", got)
	}
}
