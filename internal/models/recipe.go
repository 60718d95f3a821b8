package models

import (
	"time"
)

type Recipe struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time          `gorm:"index" json:"-"`
	UpdatedAt   time.Time          `json:"-"`
	AuthorID    uint               `gorm:"not null;index" json:"-"`
	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Name        string             `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	Image       string             `gorm:"size:512" json:"image"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeIngredient is the join row carrying the amount of an ingredient in a recipe.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
