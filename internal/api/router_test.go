package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/service"
	"github.com/bazarblot/marketplace/internal/infrastructure/db/gormstore"
	probes "github.com/bazarblot/marketplace/internal/infrastructure/http/handlers"
)

type testServer struct {
	e     *echo.Echo
	users *gormstore.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := gormstore.Open(ctx, "sqlite", fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormstore.Close(db) })
	require.NoError(t, gormstore.Migrate(ctx, db))

	tokens, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte("router-test-key"),
		Issuer:     "BazarBlot",
		Audience:   "BazarBlotUsers",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	users := gormstore.NewUserRepository(db)
	products := gormstore.NewProductRepository(db)
	log := zerolog.Nop()
	reg := prometheus.NewRegistry()

	e, err := NewRouter(Dependencies{
		Auth:     service.NewAuthService(users, tokens, nil, service.DefaultPasswordPolicy(), log),
		Products: service.NewProductService(products, users, nil, nil, log),
		Tokens:   tokens,
		Checks: map[string]probes.Check{
			"database": func(ctx context.Context) error { return gormstore.Ping(ctx, db) },
		},
		Log:        log,
		Registerer: reg,
		Gatherer:   reg,
	})
	require.NoError(t, err)
	return &testServer{e: e, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *testServer) register(t *testing.T, email, password string) authBody {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"confirmPassword":%q,"firstName":"Test","lastName":"User"}`,
		email, password, password)
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_EndToEndOwnership(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "a@x.com", "Secret1")
	require.NotEmpty(t, registered.Token)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, registered.User.ID, login.User.ID)

	rec = s.do(t, http.MethodPost, "/api/products", login.Token,
		`{"name":"Widget","price":10.50,"stockQuantity":5,"userId":"spoofed"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Equal(t, fmt.Sprintf("/api/products/%d", created.ID), location)

	rec = s.do(t, http.MethodGet, location, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		StockQuantity int     `json:"stockQuantity"`
		IsActive      bool    `json:"isActive"`
		UserID        string  `json:"userId"`
		User          struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 10.5, got.Price)
	assert.Equal(t, 5, got.StockQuantity)
	assert.True(t, got.IsActive)
	assert.Equal(t, login.User.ID, got.UserID)
	assert.Equal(t, "a@x.com", got.User.Email)

	other := s.register(t, "b@x.com", "Secret2")
	rec = s.do(t, http.MethodDelete, location, other.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, location, other.Token,
		fmt.Sprintf(`{"id":%d,"name":"Hijacked","price":1,"stockQuantity":1}`, created.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, location, "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Widget", got.Name)

	rec = s.do(t, http.MethodDelete, location, login.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, location, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminOverride(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	owner := s.register(t, "owner@x.com", "Secret1")
	rec := s.do(t, http.MethodPost, "/api/products", owner.Token, `{"name":"Lamp","price":20,"stockQuantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	location := rec.Header().Get(echo.HeaderLocation)

	hash, err := service.HashPassword("Admin123!")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, s.users.Create(ctx, &domain.User{
		ID: uuid.NewString(), Email: "root@x.com", PasswordHash: hash, FirstName: "Root", LastName: "Admin",
		Roles: domain.NewRoles(domain.RoleAdmin), CreatedAt: now, UpdatedAt: now,
	}))
	rec = s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ROOT@x.com","password":"Admin123!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var admin authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &admin))

	id := strings.TrimPrefix(location, "/api/products/")
	rec = s.do(t, http.MethodPut, location, admin.Token,
		fmt.Sprintf(`{"id":%s,"name":"Lamp v2","price":25,"stockQuantity":2,"isActive":false}`, id))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, location, "", "")
	var got struct {
		Name     string `json:"name"`
		IsActive bool   `json:"isActive"`
		UserID   string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Lamp v2", got.Name)
	assert.False(t, got.IsActive)
	assert.Equal(t, owner.User.ID, got.UserID)

	// inactive products drop out of the default listing
	rec = s.do(t, http.MethodGet, "/api/products", "", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = s.do(t, http.MethodGet, "/api/products?activeOnly=false", "", "")
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestRouter_AuthFailures(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "Secret1")

	rec := s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"A@X.com","password":"Secret1","confirmPassword":"Secret1","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"email already registered"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Wrong1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := rec.Body.String()

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"nobody@x.com","password":"Secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/products", "", `{"name":"Widget"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/products", "garbage", `{"name":"Widget"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ValidationAndMismatch(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "a@x.com", "Secret1")

	rec := s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"bad","password":"x","confirmPassword":"y","firstName":"","lastName":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "validation failed", verr.Error)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	rec = s.do(t, http.MethodPost, "/api/products", user.Token, `{"name":"Widget","price":1,"stockQuantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	location := rec.Header().Get(echo.HeaderLocation)

	rec = s.do(t, http.MethodPut, location, user.Token, `{"id":999999,"name":"Widget","price":1,"stockQuantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"ID mismatch"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/products", user.Token, `{"name":"Widget","price":2,"stockQuantity":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/products?minPrice=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/products/not-a-number", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ListAndCategories(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "a@x.com", "Secret1")

	for _, body := range []string{
		`{"name":"Coffee","price":3500,"stockQuantity":10,"category":"Beverages"}`,
		`{"name":"Honey","price":2500,"stockQuantity":10,"category":"Food"}`,
		`{"name":"Wine","price":8000,"stockQuantity":10,"category":"Beverages"}`,
		`{"name":"Old stock","price":100,"stockQuantity":0,"category":"Clearance","isActive":false}`,
	} {
		rec := s.do(t, http.MethodPost, "/api/products", user.Token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	names := func(path string) []string {
		rec := s.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Wine", "Honey", "Coffee"}, names("/api/products"))
	assert.Equal(t, []string{"Wine", "Coffee"}, names("/api/products?category=Bever"))
	assert.Equal(t, []string{"Honey", "Coffee"}, names("/api/products?minPrice=2500&maxPrice=3500"))
	assert.Contains(t, names("/api/products?activeOnly=false"), "Old stock")

	rec := s.do(t, http.MethodGet, "/api/products/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Beverages","Food"]`, rec.Body.String())
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var root rootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, apiVersion, root.Version)
	assert.Equal(t, "running", root.Status)

	rec = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database"`)

	rec = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = s.do(t, http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
