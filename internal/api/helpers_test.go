package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const testPageSize = 2

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func setupAPI(t *testing.T) *testAPI {
	return setupAPIWithRevoker(t, nil)
}

func setupAPIWithRevoker(t *testing.T, revoker service.TokenRevoker) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	db := testhelpers.SetupTestDB(t)
	router := gin.New()
	RegisterRoutes(router, Services{
		DB:            db,
		Auth:          service.NewAuthService(db, "test-secret", time.Hour, revoker),
		Users:         service.NewUserService(db),
		Tags:          service.NewTagService(db),
		Ingredients:   service.NewIngredientService(db),
		Recipes:       service.NewRecipeService(db, nil),
		Favorites:     service.NewFavoriteService(db),
		Cart:          service.NewCartService(db),
		Subscriptions: service.NewSubscriptionService(db),
		PageSize:      testPageSize,
	})

	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) login(user *models.User) string {
	a.t.Helper()

	rr := a.do(http.MethodPost, "/api/auth/token/login", gin.H{
		"email":    user.Email,
		"password": testhelpers.TestPassword,
	}, "")
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.AuthToken)
	return resp.AuthToken
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func decodeList(t *testing.T, body []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}
