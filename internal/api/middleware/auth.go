// Package middleware carries the gin middleware: JWT authentication resolving
// the caller into a principal, and role gates for the admin-only routes.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/user"
)

const principalKey = "principal"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Auth validates bearer tokens and issues them.
type Auth struct {
	secret []byte
	expiry time.Duration
}

// NewAuth creates the auth middleware.
func NewAuth(secret string, expiry time.Duration) *Auth {
	return &Auth{secret: []byte(secret), expiry: expiry}
}

// IssueToken signs a token carrying the principal's identity, role and
// department.
func (a *Auth) IssueToken(p user.Principal) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    p.ID.String(),
		"role":       string(p.Role),
		"department": p.Department,
		"exp":        time.Now().Add(a.expiry).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates a bearer token and returns the principal it carries.
func (a *Auth) ParseToken(tokenString string) (user.Principal, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Principal{}, ErrExpiredToken
		}
		return user.Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return user.Principal{}, ErrInvalidToken
	}

	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return user.Principal{}, ErrInvalidToken
	}
	rawRole, _ := claims["role"].(string)
	role := user.Role(rawRole)
	if !role.IsValid() {
		return user.Principal{}, ErrInvalidToken
	}
	dept, _ := claims["department"].(string)

	return user.Principal{ID: id, Role: role, Department: dept}, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// principal on the gin context.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "message": "Authorization header required"})
			return
		}
		p, err := a.ParseToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "message": err.Error()})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles. Admins always pass.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "message": "Authentication required"})
			return
		}
		if p.IsAdmin() {
			c.Next()
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "AUTHORIZATION_ERROR", "message": "Insufficient role"})
	}
}

// PrincipalFrom returns the authenticated principal stored on the context.
func PrincipalFrom(c *gin.Context) (user.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}
