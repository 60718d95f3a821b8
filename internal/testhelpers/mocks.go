package testhelpers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockImageStorage records uploads instead of sending them to S3.
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockTokenRevoker is an in-test stand-in for the Redis revocation store.
type MockTokenRevoker struct {
	mock.Mock
}

func (m *MockTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
