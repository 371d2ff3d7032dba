package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const testSecret = "test-secret"

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *service.TokenService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterWithGin())
	db := testhelpers.SetupSQLiteDB(t)

	deps, err := api.NewDependencies(db, &config.Config{JWTSecret: testSecret, PageSize: 6}, nil, nil)
	require.NoError(t, err)

	router := gin.New()
	api.RegisterRoutes(router, deps)
	return &testAPI{t: t, db: db, router: router, tokens: service.NewTokenService(testSecret)}
}

func (a *testAPI) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := a.tokens.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(a.t, err)
	return token
}

// do sends body as JSON. An empty token makes an anonymous request.
func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

