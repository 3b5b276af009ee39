package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"petshop/internal/config"
	"petshop/internal/middleware"
	"petshop/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用（any禁止）
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	HasToken bool   `json:"has_token"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub int64, username string, isAdmin bool, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":      sub,
		"username": username,
		"is_admin": isAdmin,
		"iat":      1,
		"exp":      9999999999,
	}

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

// request contextに載ったセッションをそのまま返すハンドラ
func echoSessionHandler(c echo.Context) error {
	s, ok := session.FromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusInternalServerError, mwErrorResponse{Error: "no session"})
	}
	return c.JSON(http.StatusOK, mwOKResponse{
		UserID:   s.UserID,
		Username: s.Username,
		IsAdmin:  s.IsAdmin,
		HasToken: s.Token != "",
	})
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// =====================
// AuthJWT
// =====================

// Authorizationなし => 401
func TestMiddleware_AuthJWT_Unauthorized_NoHeader(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "unauthorized", body.Error)
}

// Bearer形式でない => 401
func TestMiddleware_AuthJWT_Unauthorized_NotBearer(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 署名が違う => 401
func TestMiddleware_AuthJWT_Unauthorized_WrongSecret(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	token := mustMakeJWT(t, "other-secret", 1, "taro", false, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// HS256以外 => 401
func TestMiddleware_AuthJWT_Unauthorized_WrongMethod(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	token := mustMakeJWT(t, "test-secret", 1, "taro", false, jwt.SigningMethodHS512)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// subが0以下 => 401
func TestMiddleware_AuthJWT_Unauthorized_InvalidSub(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	token := mustMakeJWT(t, "test-secret", 0, "taro", false, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 正しいトークン => セッションが組み立つ（生トークンも持ち回る）
func TestMiddleware_AuthJWT_OK_BuildsSession(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/protected", echoSessionHandler, middleware.AuthJWT(cfg))

	token := mustMakeJWT(t, "test-secret", 42, "hanako", true, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, "hanako", body.Username)
	assert.True(t, body.IsAdmin)
	assert.True(t, body.HasToken)
}

// =====================
// AdminRoleGuard
// =====================

// 一般ユーザー => 403
func TestMiddleware_AdminRoleGuard_Forbidden_NonAdmin(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/admin-only", echoSessionHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	token := mustMakeJWT(t, "test-secret", 1, "taro", false, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/admin-only", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "admin only", body.Error)
}

// 管理者 => 200
func TestMiddleware_AdminRoleGuard_OK_Admin(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}

	e.GET("/admin-only", echoSessionHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	token := mustMakeJWT(t, "test-secret", 2, "admin", true, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/admin-only", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// AuthJWT無しでガード単体 => 401
func TestMiddleware_AdminRoleGuard_Unauthorized_NoSession(t *testing.T) {
	e := echo.New()

	e.GET("/admin-only", echoSessionHandler, middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin-only", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
