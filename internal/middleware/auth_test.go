package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("ValidToken", func(t *testing.T) {
		u := user.User{ID: uuid.New(), Email: "a@b.com", IsSeller: true}
		token, err := user.GenerateJWT(u)
		require.NoError(t, err)

		var actor user.Actor
		var ok bool
		r := gin.New()
		r.Use(Auth())
		r.GET("/probe", func(c *gin.Context) {
			actor, ok = ActorFrom(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, ok)
		assert.Equal(t, u.ID, actor.ID)
		assert.True(t, actor.IsSeller)
	})

	t.Run("NoTokenPassesThrough", func(t *testing.T) {
		var ok bool
		r := gin.New()
		r.Use(Auth())
		r.GET("/probe", func(c *gin.Context) {
			_, ok = ActorFrom(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, ok)
	})

	t.Run("BadTokenTreatedAsAnonymous", func(t *testing.T) {
		var ok bool
		r := gin.New()
		r.Use(Auth())
		r.GET("/probe", func(c *gin.Context) {
			_, ok = ActorFrom(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, ok)
	})

	t.Run("SessionKeyHeader", func(t *testing.T) {
		var key string
		var ok bool
		r := gin.New()
		r.Use(Auth())
		r.GET("/probe", func(c *gin.Context) {
			key, ok = SessionKeyFrom(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("X-Session-Key", "guest-xyz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.True(t, ok)
		assert.Equal(t, "guest-xyz", key)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	r := gin.New()
	r.Use(Auth())
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("Anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		token, err := user.GenerateJWT(user.User{ID: uuid.New()})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit())
	r.GET("/api/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// The strict tier allows a burst of 5; the sixth immediate request from
	// the same IP must be rejected.
	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
