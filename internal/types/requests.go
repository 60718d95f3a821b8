package types

// LoginRequest is the body of POST /auth/token/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the registration body
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// UpdateUserRequest carries the fields a user may change on their own account
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// SetPasswordRequest is the body of POST /users/set_password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// TagRequest creates or replaces a tag
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"omitempty,tagcolor"`
	Slug  string `json:"slug" binding:"required,max=200,slug"`
}

// IngredientRequest creates or replaces an ingredient
type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// IngredientAmount references a catalogue ingredient with the amount used
type IngredientAmount struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=32000"`
}

// RecipeRequest is the body of recipe create and update. Image is a base64
// data URI; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,min=1,unique=ID,dive"`
	Tags        []uint             `json:"tags" binding:"omitempty,unique"`
	Image       string             `json:"image"`
	Name        string             `json:"name" binding:"required,max=200"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1,max=32000"`
}

// RecipeFilter holds the list query parameters of GET /recipes
type RecipeFilter struct {
	Tags             []string `form:"tags"`
	AuthorID         uint     `form:"author"`
	Name             string   `form:"name"`
	IsFavorited      bool     `form:"is_favorited"`
	IsInShoppingCart bool     `form:"is_in_shopping_cart"`
}
