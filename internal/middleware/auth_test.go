package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/types"
)

type stubValidator struct {
	userID uuid.UUID
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &types.TokenClaims{UserID: s.userID, Username: "chef"}, nil
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/", func(c *gin.Context) {
		if actor := CurrentActor(c); actor != nil {
			c.String(http.StatusOK, actor.UserID.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return router
}

func serve(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := newAuthRouter(AuthMiddleware(stubValidator{userID: userID}))

	rr := serve(router, "Bearer good")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID.String(), rr.Body.String())

	for _, header := range []string{"", "Bearer bad", "Basic good", "Bearer"} {
		rr := serve(router, header)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
		assert.Contains(t, rr.Body.String(), `"errors"`)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := newAuthRouter(OptionalAuthMiddleware(stubValidator{userID: userID}))

	rr := serve(router, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())

	rr = serve(router, "bearer good")
	assert.Equal(t, userID.String(), rr.Body.String())

	rr = serve(router, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
