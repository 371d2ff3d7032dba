package testhelpers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CreateUser stores a user with a unique username derived from name.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Email:     name + "-" + suffix + "@example.com",
		Username:  name + "_" + suffix,
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Tester",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ing
}

// CreateTag stores a tag whose name and slug are slug and whose color is color.
func CreateTag(t *testing.T, db *gorm.DB, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: slug, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

// Portion pairs an ingredient with an amount for CreateRecipe.
type Portion struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe stores a recipe directly, bypassing service validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, portions ...Portion) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "recipes/images/" + strings.ReplaceAll(name, " ", "_") + ".png",
		Text:        "Mix and cook " + name,
		CookingTime: 10,
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	for _, p := range portions {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{IngredientID: p.Ingredient.ID, Amount: p.Amount})
	}
	if err := db.Omit("Tags.*").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
