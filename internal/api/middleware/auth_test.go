package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, expiry time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID:   "u-001",
		Username: "zhangsan",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// TestValidateToken 测试JWT校验
func TestValidateToken(t *testing.T) {
	valid := signToken(t, testSecret, time.Hour)

	tests := []struct {
		name      string
		token     string
		secret    string
		expectErr bool
	}{
		{"有效token", valid, testSecret, false},
		{"密钥不匹配", valid, "wrong-secret", true},
		{"已过期", signToken(t, testSecret, -time.Hour), testSecret, true},
		{"格式错误", "not.a.token", testSecret, true},
		{"空串", "", testSecret, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error, got claims %+v", claims)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.Username != "zhangsan" || claims.UserID != "u-001" || claims.Role != "admin" {
				t.Errorf("unexpected claims: %+v", claims)
			}
		})
	}
}

// TestAuthMiddleware 测试认证中间件的请求处理
func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	valid := signToken(t, testSecret, time.Hour)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(testSecret))
		r.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"username": CurrentUsername(c)})
		})
		return r
	}

	tests := []struct {
		name         string
		header       string
		query        string
		expectStatus int
	}{
		{"Bearer头有效", "Bearer " + valid, "", http.StatusOK},
		{"缺少Bearer前缀", valid, "", http.StatusUnauthorized},
		{"无凭据", "", "", http.StatusUnauthorized},
		{"query参数token", "", "?token=" + valid, http.StatusOK},
		{"无效token", "Bearer invalid", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)
			if w.Code != tt.expectStatus {
				t.Errorf("status = %d, expected %d (body: %s)", w.Code, tt.expectStatus, w.Body.String())
			}
		})
	}
}
