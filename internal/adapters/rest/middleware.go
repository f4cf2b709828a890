package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	claimsKey = "claims"

	// RoleAdmin と RoleHR は他の社員のデータを操作できるロールです。
	RoleAdmin = "admin"
	RoleHR    = "hr"
)

// Claims はトークンから取り出す操作者情報です。トークンの発行は外部の認証基盤が行います。
type Claims struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken は HS256 で署名されたトークンを検証します。
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// JWTAuth は Authorization ヘッダーの Bearer トークンを検証します。secret が空の場合は検証しません。
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("missing bearer token"))
			return
		}

		claims, err := ParseToken(strings.TrimSpace(tokenStr), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("invalid token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RateLimit は limiter 形式（例: "100-M"）のレートでクライアント IP ごとに制限します。
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("rate limit %q: %w", formatted, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	limiterMiddleware := stdlib.NewMiddleware(instance)

	return func(c *gin.Context) {
		limiterMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if c.Writer.Status() == http.StatusTooManyRequests {
			c.Abort()
			return
		}
	}, nil
}

// claimsFrom は検証済みの Claims を返します。認証が無効な場合は nil です。
func claimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

func (c *Claims) privileged() bool {
	return c.Role == RoleAdmin || c.Role == RoleHR
}

// authorizeEmployee は操作者が対象社員本人か管理者であることを確認します。
func authorizeEmployee(c *gin.Context, employeeID string) bool {
	claims := claimsFrom(c)
	if claims == nil || claims.privileged() || (claims.EmployeeID != "" && claims.EmployeeID == employeeID) {
		return true
	}
	c.AbortWithStatusJSON(http.StatusForbidden, errorResponse("not allowed to act for this employee"))
	return false
}

// scopeEmployee は一覧の対象社員を決めます。
// 管理者は指定どおり（空なら全員）、それ以外は本人に限定し、社員 ID のないトークンは拒否します。
func scopeEmployee(c *gin.Context, requested string) (string, bool) {
	claims := claimsFrom(c)
	if claims == nil || claims.privileged() {
		return requested, true
	}
	if strings.TrimSpace(claims.EmployeeID) == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse("token has no employee_id"))
		return "", false
	}
	if strings.TrimSpace(requested) == "" {
		requested = claims.EmployeeID
	}
	if !authorizeEmployee(c, requested) {
		return "", false
	}
	return requested, true
}

// requireAdmin は管理者または人事ロールを要求します。
func requireAdmin(c *gin.Context) bool {
	claims := claimsFrom(c)
	if claims == nil || claims.privileged() {
		return true
	}
	c.AbortWithStatusJSON(http.StatusForbidden, errorResponse("admin role required"))
	return false
}

// actingEmployee は Claims の社員 ID を返します。
func actingEmployee(c *gin.Context) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.EmployeeID
	}
	return ""
}
