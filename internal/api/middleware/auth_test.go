package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/models"
)

var secret = []byte("s3cret")

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(secret, models.User{ID: 12, Role: models.RoleHR}, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, models.RoleHR, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := IssueToken(secret, models.User{ID: 1, Role: models.RoleCandidate}, -time.Minute)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Role: "admin"}).SignedString(secret)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: models.RoleHR}).SignedString(secret)
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: models.RoleHR}).SignedString(secret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not-a-token",
		"expired":   expired,
		"bad role":  badRole,
		"no user":   noUser,
		"wrong alg": wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(secret, token)
			assert.Error(t, err)
		})
	}
}

func TestAuthSetsCurrentUser(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(nil), Auth(secret))
	router.GET("/", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, user)
	})

	token, err := IssueToken(secret, models.User{ID: 3, Role: models.RoleCandidate}, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":3`)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestAuthMissingHeader(t *testing.T) {
	router := gin.New()
	router.Use(Auth(secret))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
