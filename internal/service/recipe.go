package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db *gorm.DB
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe validates req and stores the recipe with its ingredients
// and tags in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, actor *types.Actor, req *types.CreateRecipeRequest) (*types.RecipeView, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	draft := draftFromCreate(req)
	if err := draft.validateShape(true); err != nil {
		return nil, err
	}

	recipe := models.Recipe{AuthorID: actor.UserID}
	draft.apply(&recipe)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := draft.loadReferences(tx)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return replaceComposition(tx, &recipe, draft, tags)
	})
	if err != nil {
		return nil, translateWriteError(err)
	}

	logging.Ctx(ctx).Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", actor.UserID.String()).
		Msg("recipe created")
	return s.GetRecipe(ctx, actor, recipe.ID)
}

// UpdateRecipe applies a partial update. Ingredients and tags are replaced wholesale.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeView, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	draft := draftFromUpdate(req)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.ownedRecipe(tx, actor, id)
		if err != nil {
			return err
		}
		if err := draft.validateShape(false); err != nil {
			return err
		}
		tags, err := draft.loadReferences(tx)
		if err != nil {
			return err
		}
		draft.apply(recipe)
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		return replaceComposition(tx, recipe, draft, tags)
	})
	if err != nil {
		return nil, translateWriteError(err)
	}
	return s.GetRecipe(ctx, actor, id)
}

// DeleteRecipe removes a recipe. Ingredient rows, favorites and cart
// entries go with it through the foreign key cascades.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.ownedRecipe(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, actor *types.Actor, id uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	views, err := s.decorate(ctx, actor, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes matching filter, newest first, and the total count.
func (s *RecipeService) ListRecipes(ctx context.Context, actor *types.Actor, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeView, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		// any of the tags, so a subquery keeps recipes with several matches unique
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if actor.IsAuthenticated() {
		if filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", actor.UserID))
		}
		if filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", actor.UserID))
		}
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := preloadRecipe(q).
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.decorate(ctx, actor, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) ownedRecipe(tx *gorm.DB, actor *types.Actor, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actor.UserID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// decorate attaches the actor dependent flags to each recipe.
func (s *RecipeService) decorate(ctx context.Context, actor *types.Actor, recipes []models.Recipe) ([]types.RecipeView, error) {
	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = recipes[i]
	}
	if !actor.IsAuthenticated() || len(recipes) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	db := s.db.WithContext(ctx)
	favorited, err := linkedIDs(db.Model(&models.Favorite{}), "recipe_id", "user_id = ? AND recipe_id IN ?", actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := linkedIDs(db.Model(&models.ShoppingCartEntry{}), "recipe_id", "user_id = ? AND recipe_id IN ?", actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	followed, err := linkedIDs(db.Model(&models.Subscription{}), "author_id", "user_id = ? AND author_id IN ?", actor.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].IsFavorited = favorited[views[i].Recipe.ID]
		views[i].IsInShoppingCart = inCart[views[i].Recipe.ID]
		views[i].IsAuthorSubscribed = followed[views[i].Recipe.AuthorID]
	}
	return views, nil
}

func linkedIDs(q *gorm.DB, column string, where string, args ...interface{}) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := q.Where(where, args...).Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients.Ingredient")
}

// replaceComposition swaps the ingredient rows and the tag set of recipe.
func replaceComposition(tx *gorm.DB, recipe *models.Recipe, draft recipeDraft, tags []models.Tag) error {
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	rows := make([]models.RecipeIngredient, len(draft.ingredients))
	for i, ing := range draft.ingredients {
		rows[i] = models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Amount: ing.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return err
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		if database.IsForeignKeyViolation(err) {
			return invalid("tags", "tag does not exist")
		}
		return err
	}
	return nil
}

// translateWriteError maps constraint violations raised by the store onto
// the field errors a sequential check would have produced.
func translateWriteError(err error) error {
	switch {
	case err == nil, IsValidationError(err):
		return err
	case database.IsUniqueViolation(err):
		return invalid("ingredients", "ingredients must be unique")
	case database.IsCheckViolation(err):
		msg := err.Error() + database.ConstraintName(err)
		if strings.Contains(msg, "cooking_time") {
			return invalid("cooking_time", "cooking time is out of range")
		}
		return invalid("amount", "amount is out of range")
	case database.IsForeignKeyViolation(err):
		if strings.Contains(database.ConstraintName(err), "recipe_tags_tag") {
			return invalid("tags", "tag does not exist")
		}
		return invalid("ingredients", "ingredient does not exist")
	}
	return err
}
