package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	db      *gorm.DB
	svc     *service.RecipeService
	author  *models.User
	actor   *types.Actor
	flour   *models.Ingredient
	egg     *models.Ingredient
	sugar   *models.Ingredient
	lunch   *models.Tag
	dinner  *models.Tag
	dessert *models.Tag
}

func setupRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	return &recipeFixture{
		db:      db,
		svc:     service.NewRecipeService(db),
		author:  author,
		actor:   types.NewActor(author.ID),
		flour:   testhelpers.CreateIngredient(t, db, "flour", "g"),
		egg:     testhelpers.CreateIngredient(t, db, "egg", "pcs"),
		sugar:   testhelpers.CreateIngredient(t, db, "sugar", "g"),
		lunch:   testhelpers.CreateTag(t, db, "lunch", "#00FF00"),
		dinner:  testhelpers.CreateTag(t, db, "dinner", "#0000FF"),
		dessert: testhelpers.CreateTag(t, db, "dessert", "#FF0000"),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func (f *recipeFixture) validRequest() *types.CreateRecipeRequest {
	return &types.CreateRecipeRequest{
		Ingredients: []types.RecipeIngredientInput{
			{ID: f.flour.ID, Amount: 200},
			{ID: f.egg.ID, Amount: 2},
		},
		Tags:        []uuid.UUID{f.lunch.ID, f.dinner.ID},
		Image:       strPtr("recipes/images/pancakes.png"),
		Name:        strPtr("Pancakes"),
		Text:        strPtr("Whisk and fry."),
		CookingTime: intPtr(15),
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func ingredientAmounts(view *types.RecipeView) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, ri := range view.Recipe.Ingredients {
		out[ri.IngredientID] = ri.Amount
	}
	return out
}

func tagIDs(view *types.RecipeView) []uuid.UUID {
	var out []uuid.UUID
	for _, tag := range view.Recipe.Tags {
		out = append(out, tag.ID)
	}
	return out
}

func TestCreateRecipeRoundTrip(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateRecipe(ctx, f.actor, f.validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", view.Recipe.Name)
	assert.Equal(t, 15, view.Recipe.CookingTime)
	assert.Equal(t, f.author.ID, view.Recipe.Author.ID)
	assert.Equal(t, map[uuid.UUID]int{f.flour.ID: 200, f.egg.ID: 2}, ingredientAmounts(view))
	assert.ElementsMatch(t, []uuid.UUID{f.lunch.ID, f.dinner.ID}, tagIDs(view))
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	for _, ri := range view.Recipe.Ingredients {
		assert.NotEmpty(t, ri.Ingredient.Name)
	}

	again, err := f.svc.GetRecipe(ctx, nil, view.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, ingredientAmounts(view), ingredientAmounts(again))
	assert.ElementsMatch(t, tagIDs(view), tagIDs(again))
}

func TestCreateRecipeRequiresAuthentication(t *testing.T) {
	f := setupRecipeFixture(t)
	_, err := f.svc.CreateRecipe(context.Background(), nil, f.validRequest())
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestCreateRecipeCookingTimeBounds(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		cookingTime int
		wantErr     bool
	}{
		{0, true},
		{1, false},
		{3600, false},
		{3601, true},
	}
	for _, tt := range tests {
		req := f.validRequest()
		req.CookingTime = intPtr(tt.cookingTime)
		_, err := f.svc.CreateRecipe(ctx, f.actor, req)
		if tt.wantErr {
			requireField(t, err, "cooking_time")
		} else {
			assert.NoError(t, err, "cooking_time=%d", tt.cookingTime)
		}
	}
}

func TestCreateRecipeAmountBounds(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	for amount, wantErr := range map[int]bool{0: true, 1: false, 1000: false, 1001: true} {
		req := f.validRequest()
		req.Ingredients = []types.RecipeIngredientInput{{ID: f.flour.ID, Amount: amount}}
		_, err := f.svc.CreateRecipe(ctx, f.actor, req)
		if wantErr {
			requireField(t, err, "amount")
		} else {
			assert.NoError(t, err, "amount=%d", amount)
		}
	}
}

func TestCreateRecipeDuplicateIngredientWins(t *testing.T) {
	f := setupRecipeFixture(t)

	req := &types.CreateRecipeRequest{
		Ingredients: []types.RecipeIngredientInput{
			{ID: f.flour.ID, Amount: 5},
			{ID: f.flour.ID, Amount: 7},
		},
		Tags: []uuid.UUID{},
	}
	_, err := f.svc.CreateRecipe(context.Background(), f.actor, req)
	requireField(t, err, "ingredients")
	assert.Contains(t, err.Error(), "unique")
}

func TestCreateRecipeRejectsBadReferences(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(req *types.CreateRecipeRequest)
		field string
	}{
		{"no ingredients", func(r *types.CreateRecipeRequest) { r.Ingredients = nil }, "ingredients"},
		{"unknown ingredient", func(r *types.CreateRecipeRequest) {
			r.Ingredients = []types.RecipeIngredientInput{{ID: uuid.New(), Amount: 1}}
		}, "ingredients"},
		{"no tags", func(r *types.CreateRecipeRequest) { r.Tags = nil }, "tags"},
		{"duplicate tags", func(r *types.CreateRecipeRequest) { r.Tags = []uuid.UUID{f.lunch.ID, f.lunch.ID} }, "tags"},
		{"unknown tag", func(r *types.CreateRecipeRequest) { r.Tags = []uuid.UUID{uuid.New()} }, "tags"},
		{"missing name", func(r *types.CreateRecipeRequest) { r.Name = nil }, "name"},
		{"blank text", func(r *types.CreateRecipeRequest) { r.Text = strPtr("   ") }, "text"},
		{"missing image", func(r *types.CreateRecipeRequest) { r.Image = nil }, "image"},
		{"missing cooking time", func(r *types.CreateRecipeRequest) { r.CookingTime = nil }, "cooking_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.validRequest()
			tt.edit(req)
			_, err := f.svc.CreateRecipe(ctx, f.actor, req)
			requireField(t, err, tt.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesComposition(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor, f.validRequest())
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, f.actor, created.Recipe.ID, &types.UpdateRecipeRequest{
		Ingredients: []types.RecipeIngredientInput{{ID: f.sugar.ID, Amount: 50}},
		Tags:        []uuid.UUID{f.dessert.ID},
		Name:        strPtr("Sweet pancakes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Sweet pancakes", updated.Recipe.Name)
	assert.Equal(t, created.Recipe.Text, updated.Recipe.Text)
	assert.Equal(t, created.Recipe.CookingTime, updated.Recipe.CookingTime)
	assert.Equal(t, map[uuid.UUID]int{f.sugar.ID: 50}, ingredientAmounts(updated))
	assert.Equal(t, []uuid.UUID{f.dessert.ID}, tagIDs(updated))

	var rows int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.Recipe.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestUpdateRecipeIsAtomic(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor, f.validRequest())
	require.NoError(t, err)

	require.NoError(t, f.db.Exec(`CREATE TRIGGER fail_recipe_tags BEFORE INSERT ON recipe_tags
		BEGIN SELECT RAISE(ABORT, 'tag write failed'); END`).Error)

	_, err = f.svc.UpdateRecipe(ctx, f.actor, created.Recipe.ID, &types.UpdateRecipeRequest{
		Ingredients: []types.RecipeIngredientInput{{ID: f.sugar.ID, Amount: 50}},
		Tags:        []uuid.UUID{f.dessert.ID},
		Name:        strPtr("Sweet pancakes"),
	})
	require.Error(t, err)

	require.NoError(t, f.db.Exec("DROP TRIGGER fail_recipe_tags").Error)

	again, err := f.svc.GetRecipe(ctx, nil, created.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", again.Recipe.Name)
	assert.Equal(t, map[uuid.UUID]int{f.flour.ID: 200, f.egg.ID: 2}, ingredientAmounts(again))
	assert.ElementsMatch(t, []uuid.UUID{f.lunch.ID, f.dinner.ID}, tagIDs(again))
}

func TestCreateRecipeIsAtomic(t *testing.T) {
	f := setupRecipeFixture(t)

	require.NoError(t, f.db.Exec(`CREATE TRIGGER fail_recipe_tags BEFORE INSERT ON recipe_tags
		BEGIN SELECT RAISE(ABORT, 'tag write failed'); END`).Error)

	_, err := f.svc.CreateRecipe(context.Background(), f.actor, f.validRequest())
	require.Error(t, err)

	for _, model := range []interface{}{&models.Recipe{}, &models.RecipeIngredient{}} {
		var n int64
		require.NoError(t, f.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestCreateRecipeReportsTagRemovedMidWrite(t *testing.T) {
	f := setupRecipeFixture(t)

	require.NoError(t, f.db.Exec(`CREATE TRIGGER drop_tag_on_link BEFORE INSERT ON recipe_tags
		BEGIN DELETE FROM tags WHERE id = NEW.tag_id; END`).Error)

	_, err := f.svc.CreateRecipe(context.Background(), f.actor, f.validRequest())
	requireField(t, err, "tags")

	var n int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.Tag{}).Where("id = ?", f.lunch.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdateRecipeChecksOwnershipBeforeInput(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor, f.validRequest())
	require.NoError(t, err)

	stranger := testhelpers.CreateUser(t, f.db, "stranger")
	_, err = f.svc.UpdateRecipe(ctx, types.NewActor(stranger.ID), created.Recipe.ID, &types.UpdateRecipeRequest{})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.svc.UpdateRecipe(ctx, f.actor, uuid.New(), &types.UpdateRecipeRequest{})
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)

	_, err = f.svc.UpdateRecipe(ctx, f.actor, created.Recipe.ID, &types.UpdateRecipeRequest{
		Ingredients: []types.RecipeIngredientInput{{ID: f.flour.ID, Amount: 1}},
		Tags:        []uuid.UUID{f.lunch.ID},
		CookingTime: intPtr(0),
	})
	requireField(t, err, "cooking_time")
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.actor, f.validRequest())
	require.NoError(t, err)
	_, err = service.NewFavoriteService(f.db).Add(ctx, f.actor, created.Recipe.ID)
	require.NoError(t, err)
	_, err = service.NewShoppingCartService(f.db).Add(ctx, f.actor, created.Recipe.ID)
	require.NoError(t, err)

	stranger := testhelpers.CreateUser(t, f.db, "stranger")
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, types.NewActor(stranger.ID), created.Recipe.ID), service.ErrForbidden)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.actor, created.Recipe.ID))
	_, err = f.svc.GetRecipe(ctx, f.actor, created.Recipe.ID)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartEntry{}} {
		var n int64
		require.NoError(t, f.db.Model(model).Where("recipe_id = ?", created.Recipe.ID).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	var tagged int64
	require.NoError(t, f.db.Table("recipe_tags").Where("recipe_id = ?", created.Recipe.ID).Count(&tagged).Error)
	assert.Zero(t, tagged)
}

func TestListRecipesFilters(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db, "other")

	lunchOnly := testhelpers.CreateRecipe(t, f.db, f.author, "soup", []*models.Tag{f.lunch},
		testhelpers.Portion{Ingredient: f.egg, Amount: 1})
	both := testhelpers.CreateRecipe(t, f.db, f.author, "stew", []*models.Tag{f.lunch, f.dinner},
		testhelpers.Portion{Ingredient: f.flour, Amount: 3})
	dessert := testhelpers.CreateRecipe(t, f.db, other, "cake", []*models.Tag{f.dessert},
		testhelpers.Portion{Ingredient: f.sugar, Amount: 100})

	page := types.PageRequest{Page: 1, Limit: 10}
	ids := func(views []types.RecipeView) []uuid.UUID {
		var out []uuid.UUID
		for _, v := range views {
			out = append(out, v.Recipe.ID)
		}
		return out
	}

	all, total, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uuid.UUID{dessert.ID, both.ID, lunchOnly.ID}, ids(all))

	byTags, total, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{TagSlugs: []string{"lunch", "dinner"}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []uuid.UUID{lunchOnly.ID, both.ID}, ids(byTags))

	byAuthor, _, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{AuthorID: &other.ID}, page)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{dessert.ID}, ids(byAuthor))

	_, err = service.NewFavoriteService(f.db).Add(ctx, f.actor, both.ID)
	require.NoError(t, err)

	favorites, total, err := f.svc.ListRecipes(ctx, f.actor, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].IsFavorited)
	assert.False(t, favorites[0].IsInShoppingCart)

	// flags are ignored for anonymous callers
	_, total, err = f.svc.ListRecipes(ctx, nil, types.RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	paged, total, err := f.svc.ListRecipes(ctx, nil, types.RecipeFilter{}, types.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uuid.UUID{lunchOnly.ID}, ids(paged))
}
