package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/auth"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/config"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "ebd-test"})
}

func issue(t *testing.T, svc *auth.JWTService, role auth.Role, ttl time.Duration) (string, auth.GenerateTokenInput) {
	t.Helper()
	in := auth.GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New(), Role: role, TTL: ttl}
	token, err := svc.GenerateAccessToken(in)
	require.NoError(t, err)
	return token, in
}

func bearer(token string) map[string]string {
	return map[string]string{AuthHeaderKey: BearerPrefix + token}
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, in := issue(t, svc, auth.RoleFinance, time.Hour)

	var tenantID, userID, ctxTenant string
	var role auth.Role
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/sales", func(c *gin.Context) {
		tenantID, userID, role = GetJWTTenantID(c), GetJWTUserID(c), GetJWTRole(c)
		ctxTenant = logger.GetTenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/api/v1/sales", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, in.TenantID.String(), tenantID)
	assert.Equal(t, in.UserID.String(), userID)
	assert.Equal(t, auth.RoleFinance, role)
	assert.Equal(t, in.TenantID.String(), ctxTenant)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ebd-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/sales", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name     string
		header   map[string]string
		wantCode string
	}{
		{"missing header", nil, "ERR_UNAUTHORIZED"},
		{"wrong scheme", map[string]string{AuthHeaderKey: "Basic abc"}, "ERR_UNAUTHORIZED"},
		{"empty token", map[string]string{AuthHeaderKey: "Bearer "}, "ERR_UNAUTHORIZED"},
		{"garbage", bearer("not-a-jwt"), "ERR_TOKEN_INVALID"},
		{"expired", bearer(expired), "ERR_TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/v1/sales", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestJWTAuthMiddleware_PublicPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	for _, p := range []string{"/health", "/webhooks/shopify", "/t/o/abc.gif"} {
		router.Handle(http.MethodGet, p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, p := range []string{"/health", "/webhooks/shopify", "/t/o/abc.gif"} {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, p, nil).Code, p)
	}
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/payouts", RequireRole(auth.RoleFinance), func(c *gin.Context) { c.Status(http.StatusCreated) })

	tests := []struct {
		role auth.Role
		want int
	}{
		{auth.RoleFinance, http.StatusCreated},
		{auth.RoleAdmin, http.StatusCreated},
		{auth.RoleSeller, http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token, _ := issue(t, svc, tt.role, time.Hour)
			assert.Equal(t, tt.want, serve(router, http.MethodPost, "/payouts", bearer(token)).Code)
		})
	}
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole(auth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/x", nil).Code)
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()
	token, in := issue(t, svc, auth.RoleSeller, time.Hour)

	var got *auth.Claims
	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(svc))
	router.GET("/x", func(c *gin.Context) {
		got = GetJWTClaims(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/x", nil).Code)
	assert.Nil(t, got)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/x", bearer("bad")).Code)
	assert.Nil(t, got)

	serve(router, http.MethodGet, "/x", bearer(token))
	require.NotNil(t, got)
	assert.Equal(t, in.UserID.String(), got.UserID)
}
