package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func ingredientNames(items []models.Ingredient) []string {
	var names []string
	for _, i := range items {
		names = append(names, i.Name)
	}
	return names
}

func TestListIngredientsByPrefix(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	ctx := context.Background()
	svc := service.NewCatalogService(db)

	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "butter", "g")
	testhelpers.CreateIngredient(t, db, "s%pice", "g")

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	matched, err := svc.ListIngredients(ctx, "S")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Sugar", "salt", "s%pice"}, ingredientNames(matched))

	matched, err = svc.ListIngredients(ctx, "su")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar"}, ingredientNames(matched))

	matched, err = svc.ListIngredients(ctx, "s%")
	require.NoError(t, err)
	assert.Equal(t, []string{"s%pice"}, ingredientNames(matched))

	matched, err = svc.ListIngredients(ctx, "utter")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestCatalogLookups(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	ctx := context.Background()
	svc := service.NewCatalogService(db)

	egg := testhelpers.CreateIngredient(t, db, "egg", "pcs")
	testhelpers.CreateTag(t, db, "lunch", "#00FF00")
	breakfast := testhelpers.CreateTag(t, db, "breakfast", "#FFFF00")

	got, err := svc.GetIngredient(ctx, egg.ID)
	require.NoError(t, err)
	assert.Equal(t, "pcs", got.MeasurementUnit)
	_, err = svc.GetIngredient(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrIngredientNotFound)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)

	tag, err := svc.GetTag(ctx, breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "#FFFF00", tag.Color)
	_, err = svc.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrTagNotFound)
}
