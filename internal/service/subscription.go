package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// AuthorView is a followed author with their newest recipes.
type AuthorView struct {
	UserView
	Recipes      []models.Recipe
	RecipesCount int64
}

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes userID follow authorID. recipesLimit bounds the recipes
// returned with the author; below 0 means all.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*AuthorView, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		return nil, notFound(err)
	}
	if userID == authorID {
		return nil, relationErr(ErrSelfSubscription, "You cannot subscribe to yourself.")
	}

	var count int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, relationErr(ErrAlreadyExists, "You are already subscribed to %s.", author.Username)
	}

	if err := db.Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, relationErr(ErrAlreadyExists, "You are already subscribed to %s.", author.Username)
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	logging.Info().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")

	views, err := s.authorViews(db, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		return notFound(err)
	}

	res := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return relationErr(ErrNotInRelation, "You are not subscribed to %s.", author.Username)
	}
	return nil
}

// List returns a page of the authors userID follows, in subscription order.
func (s *SubscriptionService) List(ctx context.Context, userID uint, page PageRequest, recipesLimit int) ([]AuthorView, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Subscription
	if err := db.Preload("Author").
		Where("user_id = ?", userID).
		Order("id").
		Offset(page.offset()).Limit(page.limit()).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	authors := make([]models.User, len(subs))
	for i, sub := range subs {
		authors[i] = sub.Author
	}
	views, err := s.authorViews(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// authorViews loads recipes and counts for authors the caller follows.
func (s *SubscriptionService) authorViews(db *gorm.DB, authors []models.User, recipesLimit int) ([]AuthorView, error) {
	views := make([]AuthorView, len(authors))
	for i, author := range authors {
		var count int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		recipes := []models.Recipe{}
		query := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id DESC")
		if recipesLimit >= 0 {
			query = query.Limit(recipesLimit)
		}
		if err := query.Find(&recipes).Error; err != nil {
			return nil, err
		}

		views[i] = AuthorView{
			UserView:     UserView{User: author, IsSubscribed: true},
			Recipes:      recipes,
			RecipesCount: count,
		}
	}
	return views, nil
}
