package types

import "github.com/pageza/foodgram/backend/internal/models"

// RecipeView is a recipe together with the flags that depend on the actor.
type RecipeView struct {
	Recipe             models.Recipe
	IsFavorited        bool
	IsInShoppingCart   bool
	IsAuthorSubscribed bool
}

// UserView is a user as seen by the actor.
type UserView struct {
	User         models.User
	IsSubscribed bool
}

// SubscriptionView is a followed author with a capped list of recent recipes.
type SubscriptionView struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// ShoppingListItem is one aggregated line of the shopping list.
type ShoppingListItem struct {
	Name            string `db:"name"`
	MeasurementUnit string `db:"measurement_unit"`
	Amount          int64  `db:"amount"`
}
