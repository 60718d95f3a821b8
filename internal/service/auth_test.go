package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const testSecret = "test-secret"

func registerRequest(username string) *types.CreateUserRequest {
	return &types.CreateUserRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Anna",
		LastName:  "Cook",
		Password:  "password123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	ctx := context.Background()

	user, err := authSvc.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err := authSvc.Login(ctx, "ANNA@example.com", "password123")
	require.NoError(t, err)

	claims, err := authSvc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "anna", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	ctx := context.Background()

	_, err := authSvc.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)

	_, err = authSvc.Register(ctx, registerRequest("anna"))
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "username")
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	testhelpers.CreateUser(t, db, "anna")

	_, err := authSvc.Login(context.Background(), "anna@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = authSvc.Login(context.Background(), "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db, "anna")
	ctx := context.Background()

	expired := service.NewAuthService(db, testSecret, -time.Minute, nil)
	token, err := expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = expired.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewAuthService(db, "other-secret", time.Hour, nil)
	token, err = other.GenerateToken(user)
	require.NoError(t, err)
	_, err = service.NewAuthService(db, testSecret, time.Hour, nil).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateTokenRejectsDeletedUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db, "anna")
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	ctx := context.Background()

	token, err := authSvc.GenerateToken(user)
	require.NoError(t, err)

	require.NoError(t, service.NewUserService(db).Delete(ctx, user.ID, user.ID))

	_, err = authSvc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db, "anna")
	ctx := context.Background()

	revoker := new(testhelpers.MockTokenRevoker)
	authSvc := service.NewAuthService(db, testSecret, time.Hour, revoker)

	token, err := authSvc.GenerateToken(user)
	require.NoError(t, err)

	revoker.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
	claims, err := authSvc.ValidateToken(ctx, token)
	require.NoError(t, err)

	revoker.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil).Once()
	require.NoError(t, authSvc.Logout(ctx, claims))

	revoker.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil).Once()
	_, err = authSvc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	revoker.AssertExpectations(t)
}

func TestLogoutWithoutRevokerIsNoop(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db, "anna")
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	ctx := context.Background()

	token, err := authSvc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := authSvc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, authSvc.Logout(ctx, claims))
	_, err = authSvc.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db, "anna")
	authSvc := service.NewAuthService(db, testSecret, time.Hour, nil)
	ctx := context.Background()

	err := authSvc.SetPassword(ctx, user.ID, "not-the-password", "newpassword1")
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "current_password")

	require.NoError(t, authSvc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "newpassword1"))

	_, err = authSvc.Login(ctx, user.Email, testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = authSvc.Login(ctx, user.Email, "newpassword1")
	assert.NoError(t, err)
}
