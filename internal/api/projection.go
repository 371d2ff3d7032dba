package api

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Projection is one of the response shapes the API renders.
type Projection int

const (
	FullRecipe Projection = iota
	RecipeSummary
	UserProfile
	SubscriptionProjection
)

// Operation names one handler result that gets rendered.
type Operation string

const (
	OpListRecipes       Operation = "recipes.list"
	OpGetRecipe         Operation = "recipes.retrieve"
	OpCreateRecipe      Operation = "recipes.create"
	OpUpdateRecipe      Operation = "recipes.update"
	OpAddFavorite       Operation = "recipes.favorite"
	OpAddToCart         Operation = "recipes.shopping_cart"
	OpListUsers         Operation = "users.list"
	OpGetUser           Operation = "users.retrieve"
	OpMe                Operation = "users.me"
	OpSubscribe         Operation = "users.subscribe"
	OpListSubscriptions Operation = "users.subscriptions"
)

// operationProjections maps every rendered operation to its response shape.
var operationProjections = map[Operation]Projection{
	OpListRecipes:       FullRecipe,
	OpGetRecipe:         FullRecipe,
	OpCreateRecipe:      FullRecipe,
	OpUpdateRecipe:      FullRecipe,
	OpAddFavorite:       RecipeSummary,
	OpAddToCart:         RecipeSummary,
	OpListUsers:         UserProfile,
	OpGetUser:           UserProfile,
	OpMe:                UserProfile,
	OpSubscribe:         SubscriptionProjection,
	OpListSubscriptions: SubscriptionProjection,
}

// projector renders service results. Images go through the resolver so
// stored object keys reach clients as loadable URLs.
type projector struct {
	images service.IImageResolver
}

// ProjectionFor returns the projection registered for op.
func ProjectionFor(op Operation) (Projection, bool) {
	p, ok := operationProjections[op]
	return p, ok
}

// project renders one value for op. Slices render element by element.
func (p *projector) project(ctx context.Context, op Operation, value interface{}) interface{} {
	projection, ok := operationProjections[op]
	if !ok {
		panic(fmt.Sprintf("api: no projection registered for %q", op))
	}

	switch projection {
	case FullRecipe:
		switch v := value.(type) {
		case *types.RecipeView:
			return p.fullRecipe(ctx, v)
		case []types.RecipeView:
			out := make([]types.RecipeResponse, len(v))
			for i := range v {
				out[i] = p.fullRecipe(ctx, &v[i])
			}
			return out
		}
	case RecipeSummary:
		if v, ok := value.(*models.Recipe); ok {
			return p.recipeSummary(ctx, v)
		}
	case UserProfile:
		switch v := value.(type) {
		case *types.UserView:
			return userProfile(&v.User, v.IsSubscribed)
		case []types.UserView:
			out := make([]types.UserResponse, len(v))
			for i := range v {
				out[i] = userProfile(&v[i].User, v[i].IsSubscribed)
			}
			return out
		}
	case SubscriptionProjection:
		switch v := value.(type) {
		case *types.SubscriptionView:
			return p.subscription(ctx, v)
		case []types.SubscriptionView:
			out := make([]types.SubscriptionResponse, len(v))
			for i := range v {
				out[i] = p.subscription(ctx, &v[i])
			}
			return out
		}
	}
	panic(fmt.Sprintf("api: cannot render %T for %q", value, op))
}

func (p *projector) image(ctx context.Context, image string) string {
	if p.images == nil {
		return image
	}
	return p.images.Resolve(ctx, image)
}

func (p *projector) fullRecipe(ctx context.Context, v *types.RecipeView) types.RecipeResponse {
	r := &v.Recipe
	tags := make([]types.TagResponse, len(r.Tags))
	for i, tag := range r.Tags {
		tags[i] = tagResponse(&tag)
	}
	ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           userProfile(&r.Author, v.IsAuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             r.Name,
		Image:            p.image(ctx, r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (p *projector) recipeSummary(ctx context.Context, r *models.Recipe) types.RecipeSummaryResponse {
	return types.RecipeSummaryResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.image(ctx, r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p *projector) subscription(ctx context.Context, v *types.SubscriptionView) types.SubscriptionResponse {
	recipes := make([]types.RecipeSummaryResponse, len(v.Recipes))
	for i := range v.Recipes {
		recipes[i] = p.recipeSummary(ctx, &v.Recipes[i])
	}
	return types.SubscriptionResponse{
		UserResponse: userProfile(&v.Author, true),
		Recipes:      recipes,
		RecipesCount: v.RecipesCount,
	}
}

func userProfile(u *models.User, isSubscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func tagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}
