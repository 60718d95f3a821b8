package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserView is a user as seen by the viewer.
type UserView struct {
	models.User
	IsSubscribed bool
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns one page of users ordered by id. viewerID 0 is anonymous.
func (s *UserService) List(ctx context.Context, viewerID uint, page PageRequest) ([]UserView, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("id").Offset(page.offset()).Limit(page.limit()).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := subscribedAuthors(db, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]UserView, len(users))
	for i, u := range users {
		views[i] = UserView{User: u, IsSubscribed: subscribed[u.ID]}
	}
	return views, total, nil
}

func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*UserView, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}

	subscribed, err := subscribedAuthors(db, viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	return &UserView{User: user, IsSubscribed: subscribed[id]}, nil
}

// Update changes the account of id; only the account owner may do so.
func (s *UserService) Update(ctx context.Context, actorID, id uint, req *types.UpdateUserRequest) (*UserView, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	if user.ID != actorID {
		return nil, ErrForbidden
	}

	var email, username string
	if req.Email != nil {
		email = strings.ToLower(*req.Email)
		user.Email = email
	}
	if req.Username != nil {
		username = *req.Username
		user.Username = username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := checkUserUnique(db, user.ID, email, username); err != nil {
		return nil, err
	}
	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &UserView{User: user}, nil
}

// Delete removes the account of id with its recipes and relations.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return notFound(err)
	}
	if user.ID != actorID {
		return ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipeIDs []uint
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", id).Pluck("id", &recipeIDs).Error; err != nil {
			return err
		}
		if err := deleteRecipes(tx, recipeIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logging.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}

// subscribedAuthors reports which of authorIDs viewerID follows.
func subscribedAuthors(db *gorm.DB, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if viewerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var ids []uint
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
