package account

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	accountIDKey = "accountID"
	roleKey      = "accountRole"
)

// Claims is what the identity provider puts in its tokens. Subject
// carries the account id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// IdentityMiddleware verifies the bearer token and stores the caller's
// account id and role in the gin context. Anything else gets a 401.
func IdentityMiddleware(secret []byte, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		var claims Claims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || id == 0 || !claims.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set(accountIDKey, uint(id))
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRole must run after IdentityMiddleware.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := CurrentRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

func CurrentAccountID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(accountIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func CurrentRole(c *gin.Context) (Role, bool) {
	v, ok := c.Get(roleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(Role)
	return role, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// SignToken mints a token the middleware accepts. Production tokens come
// from the identity provider; this is for local tooling and tests.
func SignToken(secret []byte, issuer string, accountID uint, role Role, ttl time.Duration) (string, error) {
	if accountID == 0 {
		return "", errors.New("account id is required")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
