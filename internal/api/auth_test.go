package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestLoginAndMe(t *testing.T) {
	a := setupAPI(t)
	user := testhelpers.CreateUser(t, a.db, "anna")

	token := a.login(user)

	rr := a.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "anna", body["username"])
	assert.Equal(t, "anna@example.com", body["email"])
	assert.Equal(t, false, body["is_subscribed"])
	assert.NotContains(t, body, "password")
}

func TestLoginWrongPassword(t *testing.T) {
	a := setupAPI(t)
	testhelpers.CreateUser(t, a.db, "anna")

	rr := a.do(http.MethodPost, "/api/auth/token/login", gin.H{
		"email":    "anna@example.com",
		"password": "not-the-password",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr), "non_field_errors")
}

func TestMeRequiresToken(t *testing.T) {
	a := setupAPI(t)

	rr := a.do(http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(http.MethodGet, "/api/users/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	revoker := &testhelpers.MockTokenRevoker{}
	a := setupAPIWithRevoker(t, revoker)
	user := testhelpers.CreateUser(t, a.db, "anna")
	token := a.login(user)

	revoker.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil).Once()
	revoker.On("Revoke", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	revoker.On("IsRevoked", mock.Anything, mock.Anything).Return(true, nil)

	rr := a.do(http.MethodPost, "/api/auth/token/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	revoker.AssertExpectations(t)
}

func TestLogoutWithoutRevokerSucceeds(t *testing.T) {
	a := setupAPI(t)
	token := a.login(testhelpers.CreateUser(t, a.db, "anna"))

	rr := a.do(http.MethodPost, "/api/auth/token/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
