package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testKID = "test-key-1"

// newTestJWKS serves a JWKS containing the given RSA public key and returns the
// parsed key set the middleware verifies against.
func newTestJWKS(t *testing.T, pub *rsa.PublicKey) *keyfunc.JWKS {
	t.Helper()

	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	body := fmt.Sprintf(`{"keys":[{"kty":"RSA","alg":"RS256","use":"sig","kid":"%s","n":"%s","e":"%s"}]}`, testKID, n, e)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	jwks, err := keyfunc.Get(srv.URL, keyfunc.Options{})
	require.NoError(t, err)
	t.Cleanup(jwks.EndBackground)
	return jwks
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

// newAuthRouter wires the middleware in front of a handler that counts how often a
// request made it through, standing in for the upstream call.
func newAuthRouter(jwks *keyfunc.JWKS, upstreamCalls *int) *gin.Engine {
	router := gin.New()
	router.POST("/api", BearerAuthMiddleware(jwks), func(c *gin.Context) {
		*upstreamCalls++
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return router
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwks := newTestJWKS(t, &key.PublicKey)

	var upstreamCalls int
	router := newAuthRouter(jwks, &upstreamCalls)

	signed := signToken(t, key, testKID, jwt.MapClaims{
		"sub": "user_123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_123", w.Body.String())
	assert.Equal(t, 1, upstreamCalls)
}

func TestBearerAuthRejectsBeforeUpstream(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwks := newTestJWKS(t, &key.PublicKey)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var upstreamCalls int
	router := newAuthRouter(jwks, &upstreamCalls)

	validClaims := jwt.MapClaims{
		"sub": "user_123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	tests := map[string]string{
		"missing header":    "",
		"not bearer":        "Basic abc123",
		"empty token":       "Bearer ",
		"garbage token":     "Bearer not.a.jwt",
		"wrong signing key": "Bearer " + signToken(t, otherKey, testKID, validClaims),
		"expired token": "Bearer " + signToken(t, key, testKID, jwt.MapClaims{
			"sub": "user_123",
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"missing subject": "Bearer " + signToken(t, key, testKID, jwt.MapClaims{
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Zero(t, upstreamCalls, "rejected requests must never reach upstream")
}

func TestHashTokenIsStableAndHexEncoded(t *testing.T) {
	h1 := HashToken("token-a")
	h2 := HashToken("token-a")
	h3 := HashToken("token-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
