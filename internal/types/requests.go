package types

import "github.com/google/uuid"

// RecipeIngredientInput references an existing ingredient with an amount.
type RecipeIngredientInput struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// CreateRecipeRequest is the body of POST /recipes. Scalar fields are
// pointers so a missing field can be told apart from a zero value.
type CreateRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID             `json:"tags" binding:"required"`
	Image       *string                 `json:"image"`
	Name        *string                 `json:"name"`
	Text        *string                 `json:"text"`
	CookingTime *int                    `json:"cooking_time"`
}

// UpdateRecipeRequest is the body of PATCH /recipes/:id. Ingredients and
// tags are always required; omitted scalar fields keep their value.
type UpdateRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID             `json:"tags" binding:"required"`
	Image       *string                 `json:"image"`
	Name        *string                 `json:"name"`
	Text        *string                 `json:"text"`
	CookingTime *int                    `json:"cooking_time"`
}

// RecipeFilter holds the query parameters of GET /recipes.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// PageRequest is a 1-based page with a fixed size.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
