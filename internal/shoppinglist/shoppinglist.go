// Package shoppinglist sums the ingredients of the recipes in a cart into one list.
package shoppinglist

import (
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Item is one line of the list: an ingredient in a unit with its summed amount.
type Item struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type itemKey struct {
	name string
	unit string
}

// List is the aggregated result. Recipes and Items keep first-encounter order.
type List struct {
	Recipes []string `json:"recipes"`
	Items   []Item   `json:"items"`
}

// Build aggregates the ingredient rows of recipes. Each recipe must have
// Ingredients with their Ingredient preloaded.
func Build(recipes []models.Recipe) *List {
	list := &List{Recipes: []string{}, Items: []Item{}}
	seenRecipe := make(map[string]struct{}, len(recipes))
	index := make(map[itemKey]int)

	for _, recipe := range recipes {
		if _, ok := seenRecipe[recipe.Name]; !ok {
			seenRecipe[recipe.Name] = struct{}{}
			list.Recipes = append(list.Recipes, recipe.Name)
		}

		for _, ri := range recipe.Ingredients {
			key := itemKey{name: ri.Ingredient.Name, unit: ri.Ingredient.MeasurementUnit}
			if i, ok := index[key]; ok {
				list.Items[i].Amount += ri.Amount
				continue
			}
			index[key] = len(list.Items)
			list.Items = append(list.Items, Item{
				Name:            key.name,
				MeasurementUnit: key.unit,
				Amount:          ri.Amount,
			})
		}
	}

	return list
}

// WriteTo renders the plain-text report.
func (l *List) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Your recipes: %s\n", strings.Join(l.Recipes, ", "))
	b.WriteString("Ingredients needed for all recipes:\n")
	for _, item := range l.Items {
		fmt.Fprintf(&b, "- %s: %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// String returns the plain-text report.
func (l *List) String() string {
	var b strings.Builder
	_, _ = l.WriteTo(&b)
	return b.String()
}
