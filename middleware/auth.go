package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"aftervisit/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	authCachePrefix = "auth:token:"
	authCacheTTL    = 5 * time.Minute
)

// NewJWKS fetches the identity provider's public key set and keeps it refreshed in the
// background. Tokens signed with a key the cached set does not know trigger a refetch.
func NewJWKS(jwksURL string) (*keyfunc.JWKS, error) {
	return keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			utils.GetLogger().Warn("JWKS refresh failed", zap.Error(err))
		},
	})
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// BearerAuthMiddleware verifies the Authorization bearer token against the remote key
// set and sets the token subject on the context as "userID". Recently verified tokens
// are looked up by hash in the auth cache; cache unavailability falls back to full
// verification, never to rejection.
func BearerAuthMiddleware(jwks *keyfunc.JWKS) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		ctx := c.Request.Context()
		cacheKey := authCachePrefix + HashToken(tokenString)

		authCache := utils.GetAuthCacheClient()
		if authCache != nil {
			cachedSub, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil && cachedSub != "" {
				c.Set("userID", cachedSub)
				c.Next()
				return
			}
			if err != nil && err != redis.Nil {
				utils.GetLogger().Warn("Auth cache lookup failed, verifying token directly", zap.Error(err))
			}
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, jwks.Keyfunc)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token does not contain a valid 'sub' claim"})
			return
		}

		if authCache != nil {
			// Cap the cache entry at the token's own expiry so an expired token can
			// never authenticate from cache.
			ttl := authCacheTTL
			if exp, ok := claims["exp"].(float64); ok {
				if until := time.Until(time.Unix(int64(exp), 0)); until < ttl {
					ttl = until
				}
			}
			if ttl > 0 {
				_ = authCache.Set(ctx, cacheKey, sub, ttl).Err()
			}
		}

		c.Set("userID", sub)
		c.Next()
	}
}
