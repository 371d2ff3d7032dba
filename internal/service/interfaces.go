package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ITokenService validates bearer tokens issued by the identity service.
type ITokenService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, actor *types.Actor, req *types.CreateRecipeRequest) (*types.RecipeView, error)
	GetRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID) (*types.RecipeView, error)
	UpdateRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeView, error)
	DeleteRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID) error
	ListRecipes(ctx context.Context, actor *types.Actor, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeView, int64, error)
}

// IRecipeListService adds and removes recipes from one of the actor's lists.
type IRecipeListService interface {
	Add(ctx context.Context, actor *types.Actor, recipeID uuid.UUID) (*models.Recipe, error)
	Remove(ctx context.Context, actor *types.Actor, recipeID uuid.UUID) error
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, actor *types.Actor, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error)
	Unsubscribe(ctx context.Context, actor *types.Actor, authorID uuid.UUID) error
	ListSubscriptions(ctx context.Context, actor *types.Actor, page types.PageRequest, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

// IUserService defines the interface for reading user profiles
type IUserService interface {
	GetUser(ctx context.Context, actor *types.Actor, id uuid.UUID) (*types.UserView, error)
	Me(ctx context.Context, actor *types.Actor) (*types.UserView, error)
	ListUsers(ctx context.Context, actor *types.Actor, page types.PageRequest) ([]types.UserView, int64, error)
}

// ICatalogService serves the read-only ingredient and tag collections.
type ICatalogService interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
}

// IShoppingListService builds the actor's aggregated shopping list.
type IShoppingListService interface {
	Build(ctx context.Context, actor *types.Actor) ([]types.ShoppingListItem, error)
}

// IImageResolver turns a stored image reference into a client URL.
type IImageResolver interface {
	Resolve(ctx context.Context, image string) string
}
