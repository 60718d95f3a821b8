package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
	revoker   TokenRevoker
	now       func() time.Time
}

// NewAuthService creates the auth service. revoker may be nil, in which case
// logout cannot invalidate tokens before they expire.
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, revoker TokenRevoker) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		revoker:   revoker,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.CreateUserRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)

	if err := checkUserUnique(db, 0, req.Email, req.Username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &user, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(&user)
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies the signature and expiry and rejects revoked tokens
// and tokens whose user no longer exists.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	// the account may have been deleted after the token was issued
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username", "is_admin").First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	claims.Username = user.Username
	claims.IsAdmin = user.IsAdmin

	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.revoker == nil {
		logging.Warn().Uint("user_id", claims.UserID).Msg("token revocation unavailable, logout is a no-op")
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logging.Info().Uint("user_id", claims.UserID).Msg("user logged out")
	return nil
}

func (s *AuthService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return notFound(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return newValidationError("current_password", "Invalid password.")
	}
	if current == next {
		return newValidationError("new_password", "The new password must differ from the current one.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return db.Model(&user).Update("password_hash", string(hashedPassword)).Error
}

// checkUserUnique reports a taken email or username, ignoring user selfID.
func checkUserUnique(db *gorm.DB, selfID uint, email, username string) error {
	verr := &ValidationError{Fields: map[string][]string{}}

	if email != "" {
		var count int64
		if err := db.Model(&models.User{}).
			Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), selfID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			verr.Fields["email"] = []string{"A user with that email already exists."}
		}
	}

	if username != "" {
		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, selfID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			verr.Fields["username"] = []string{"A user with that username already exists."}
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
