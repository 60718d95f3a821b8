package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRegisterUser(t *testing.T) {
	a := setupAPI(t)

	payload := gin.H{
		"email":      "vasya@example.com",
		"username":   "vasya",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "s3cret-pass",
	}
	rr := a.do(http.MethodPost, "/api/users", payload, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "vasya", body["username"])
	assert.NotContains(t, body, "password")

	rr = a.do(http.MethodPost, "/api/users", payload, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decode(t, rr)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "username")

	rr = a.do(http.MethodPost, "/api/auth/token/login", gin.H{"email": "VASYA@example.com", "password": "s3cret-pass"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterUserValidation(t *testing.T) {
	a := setupAPI(t)

	rr := a.do(http.MethodPost, "/api/users", gin.H{
		"email":    "not-an-email",
		"username": "me",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decode(t, rr)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestListUsersPaginated(t *testing.T) {
	a := setupAPI(t)
	for _, name := range []string{"a1", "a2", "a3"} {
		testhelpers.CreateUser(t, a.db, name)
	}

	rr := a.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode(t, rr)
	assert.Equal(t, float64(3), page["count"])
	assert.Equal(t, "http://example.com/api/users?page=2", page["next"])
	assert.Nil(t, page["previous"])
	assert.Len(t, page["results"], 2)

	rr = a.do(http.MethodGet, "/api/users?page=2", nil, "")
	page = decode(t, rr)
	assert.Nil(t, page["next"])
	assert.Equal(t, "http://example.com/api/users", page["previous"])
	assert.Len(t, page["results"], 1)

	rr = a.do(http.MethodGet, "/api/users?limit=10", nil, "")
	page = decode(t, rr)
	assert.Len(t, page["results"], 3)

	rr = a.do(http.MethodGet, "/api/users?page=9223372036854775807", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode(t, rr)
	assert.Equal(t, float64(3), page["count"])
	assert.Empty(t, page["results"])
	assert.Nil(t, page["next"])
	assert.Equal(t, fmt.Sprintf("http://example.com/api/users?page=%d", maxPage-1), page["previous"])
}

func TestUnknownUserIs404(t *testing.T) {
	a := setupAPI(t)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/users/999", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/users/abc", nil, "").Code)
}

func TestUpdateOwnAccountOnly(t *testing.T) {
	a := setupAPI(t)
	anna := testhelpers.CreateUser(t, a.db, "anna")
	bob := testhelpers.CreateUser(t, a.db, "bob")
	token := a.login(anna)

	rr := a.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", anna.ID), gin.H{"first_name": "Anya"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Anya", decode(t, rr)["first_name"])

	rr = a.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", bob.ID), gin.H{"first_name": "Robert"}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	a := setupAPI(t)
	chef := testhelpers.CreateUser(t, a.db, "chef")
	anna := testhelpers.CreateUser(t, a.db, "anna")
	egg := testhelpers.CreateIngredient(t, a.db, "egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, a.db, chef, "Omelette", nil, []*models.Ingredient{egg}, 3)
	token := a.login(anna)

	rr := a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", anna.ID), nil, token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID), nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = a.do(http.MethodPost, "/api/recipes",
		recipePayload("Ghost soup", nil, gin.H{"id": egg.ID, "amount": 1}), token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, token).Code)

	var favorites int64
	require.NoError(t, a.db.Model(&models.Favorite{}).Count(&favorites).Error)
	assert.Zero(t, favorites)
}

func TestSetPassword(t *testing.T) {
	a := setupAPI(t)
	anna := testhelpers.CreateUser(t, a.db, "anna")
	token := a.login(anna)

	rr := a.do(http.MethodPost, "/api/users/set_password", gin.H{
		"current_password": "wrong-password",
		"new_password":     "another-pass",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr), "current_password")

	rr = a.do(http.MethodPost, "/api/users/set_password", gin.H{
		"current_password": testhelpers.TestPassword,
		"new_password":     "another-pass",
	}, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(http.MethodPost, "/api/auth/token/login", gin.H{"email": anna.Email, "password": "another-pass"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSubscriptions(t *testing.T) {
	a := setupAPI(t)
	anna := testhelpers.CreateUser(t, a.db, "anna")
	chef := testhelpers.CreateUser(t, a.db, "chef")
	egg := testhelpers.CreateIngredient(t, a.db, "egg", "pcs")
	testhelpers.CreateRecipe(t, a.db, chef, "Omelette", nil, []*models.Ingredient{egg}, 3)
	testhelpers.CreateRecipe(t, a.db, chef, "Boiled egg", nil, []*models.Ingredient{egg}, 1)
	token := a.login(anna)

	rr := a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", anna.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=1", chef.ID), nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	author := decode(t, rr)
	assert.Equal(t, "chef", author["username"])
	assert.Equal(t, true, author["is_subscribed"])
	assert.Equal(t, float64(2), author["recipes_count"])
	assert.Len(t, author["recipes"], 1)

	rr = a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", chef.ID), nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", chef.ID), nil, token)
	assert.Equal(t, true, decode(t, rr)["is_subscribed"])

	rr = a.do(http.MethodGet, "/api/users/subscriptions", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode(t, rr)
	assert.Equal(t, float64(1), page["count"])
	results := page["results"].([]interface{})
	assert.Len(t, results[0].(map[string]interface{})["recipes"], 2)

	rr = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", chef.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", chef.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPost, "/api/users/999/subscribe", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
