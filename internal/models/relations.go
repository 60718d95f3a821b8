package models

import (
	"time"
)

// Subscription means UserID follows AuthorID.
type Subscription struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	User      User `gorm:"foreignKey:UserID"`
	Author    User `gorm:"foreignKey:AuthorID"`
}

type Favorite struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`
	User      User   `gorm:"foreignKey:UserID"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// CartItem puts a recipe into a user's shopping cart.
type CartItem struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_cart_pair"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:idx_cart_pair;index"`
	User      User   `gorm:"foreignKey:UserID"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID"`
}

func (CartItem) TableName() string {
	return "shopping_cart"
}

// All lists every model for auto-migration, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Subscription{},
		&Favorite{},
		&CartItem{},
	}
}
