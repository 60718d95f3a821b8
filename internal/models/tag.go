package models

// Tag labels recipes, e.g. breakfast or vegan.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// Ingredient is a catalogue entry; the amount lives on RecipeIngredient.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}
