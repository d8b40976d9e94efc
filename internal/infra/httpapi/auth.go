package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userContextKey = "auth_user"

// defaultAccountType applies to tokens without user_metadata.account_type.
const defaultAccountType = "personal"

var errMissingToken = errors.New("missing bearer token")

// AuthUser is the caller identity carried by the provider's access token.
type AuthUser struct {
	ID          string
	Email       string
	AccountType string
}

func requireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := parseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

func parseBearer(header, secret string) (*AuthUser, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, errMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	user := &AuthUser{ID: sub, AccountType: defaultAccountType}
	user.Email, _ = claims["email"].(string)
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		if t, ok := meta["account_type"].(string); ok && t != "" {
			user.AccountType = t
		}
	}
	return user, nil
}

// currentUser returns the user set by requireAuth.
func currentUser(c *gin.Context) *AuthUser {
	v, _ := c.Get(userContextKey)
	user, _ := v.(*AuthUser)
	return user
}
