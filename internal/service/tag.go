package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (s *TagService) Create(ctx context.Context, req *types.TagRequest) (*models.Tag, error) {
	tag := models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := s.save(ctx, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) Update(ctx context.Context, id uint, req *types.TagRequest) (*models.Tag, error) {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tag.Name, tag.Color, tag.Slug = req.Name, req.Color, req.Slug
	if err := s.save(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes the tag and detaches it from every recipe.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
}

func (s *TagService) save(ctx context.Context, tag *models.Tag) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Tag{}).Where("slug = ? AND id <> ?", tag.Slug, tag.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("slug", "A tag with this slug already exists.")
	}

	if err := db.Save(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("slug", "A tag with this slug already exists.")
		}
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}
