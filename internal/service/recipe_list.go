package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// listKind describes one per-user recipe list, favorites or the shopping cart.
type listKind struct {
	name       string
	newEntry   func(userID, recipeID uuid.UUID) interface{}
	errPresent error
	errAbsent  error
}

var (
	favoritesList = listKind{
		name: "favorites",
		newEntry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		errPresent: ErrAlreadyFavorited,
		errAbsent:  ErrNotFavorited,
	}
	shoppingCartList = listKind{
		name: "shopping_cart",
		newEntry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
		errPresent: ErrAlreadyInCart,
		errAbsent:  ErrNotInCart,
	}
)

// RecipeListService toggles recipes in one of the actor's lists.
type RecipeListService struct {
	db   *gorm.DB
	kind listKind
}

var _ IRecipeListService = (*RecipeListService)(nil)

// NewFavoriteService manages the actor's favorite recipes.
func NewFavoriteService(db *gorm.DB) *RecipeListService {
	return &RecipeListService{db: db, kind: favoritesList}
}

// NewShoppingCartService manages the recipes in the actor's shopping cart.
func NewShoppingCartService(db *gorm.DB) *RecipeListService {
	return &RecipeListService{db: db, kind: shoppingCartList}
}

// Add puts the recipe on the list and returns it. The unique index on
// (user, recipe) decides between concurrent adds.
func (s *RecipeListService) Add(ctx context.Context, actor *types.Actor, recipeID uuid.UUID) (*models.Recipe, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(s.kind.newEntry(actor.UserID, recipeID)).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			metrics.RecordListConflict(s.kind.name)
			return nil, s.kind.errPresent
		case database.IsForeignKeyViolation(err):
			// recipe deleted between the lookup and the insert
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("list", s.kind.name).
		Str("recipe_id", recipeID.String()).
		Msg("recipe added to list")
	return &recipe, nil
}

// Remove takes the recipe off the list.
func (s *RecipeListService) Remove(ctx context.Context, actor *types.Actor, recipeID uuid.UUID) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return ErrRecipeNotFound
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", actor.UserID, recipeID).
		Delete(s.kind.newEntry(uuid.Nil, uuid.Nil))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.kind.errAbsent
	}
	return nil
}
