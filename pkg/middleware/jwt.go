package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"contactsapi/internal"
	"contactsapi/internal/model"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
)

// NewJWTAuth returns a middleware that authenticates requests with a
// bearer access token, loads the user behind it and stores the row under
// the user context key. Lookups are cached for a minute so a chatty
// client doesn't hit the users table on every call.
func NewJWTAuth(d *internal.Deps) gin.HandlerFunc {
	cache := ttlcache.NewCache()
	cache.SetTTL(time.Minute)
	cache.SkipTTLExtensionOnHit(true)

	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing bearer token",
				"requestID": requestID,
			})
			return
		}

		email, err := d.Tokens.Decode(tokenStr, security.TokenAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
			return
		}

		user, err := lookupUser(d, cache, email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Invalid or expired token",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load user for token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !user.Confirmed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Email not confirmed",
				"requestID": requestID,
			})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}

func lookupUser(d *internal.Deps, cache *ttlcache.Cache, email string) (*model.User, error) {
	if v, err := cache.Get(email); err == nil {
		if user, ok := v.(*model.User); ok {
			return user, nil
		}
	}

	user, err := d.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	cache.Set(email, user)
	return user, nil
}
