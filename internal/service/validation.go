package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// recipeDraft is a validated recipe payload ready to be written.
type recipeDraft struct {
	name        *string
	image       *string
	text        *string
	cookingTime *int
	ingredients []types.RecipeIngredientInput
	tags        []uuid.UUID
}

func draftFromCreate(req *types.CreateRecipeRequest) recipeDraft {
	return recipeDraft{
		name:        req.Name,
		image:       req.Image,
		text:        req.Text,
		cookingTime: req.CookingTime,
		ingredients: req.Ingredients,
		tags:        req.Tags,
	}
}

func draftFromUpdate(req *types.UpdateRecipeRequest) recipeDraft {
	return recipeDraft{
		name:        req.Name,
		image:       req.Image,
		text:        req.Text,
		cookingTime: req.CookingTime,
		ingredients: req.Ingredients,
		tags:        req.Tags,
	}
}

// validateShape checks everything that does not need the store. Ingredient
// errors take precedence over tag errors, which take precedence over the
// scalar fields.
func (d recipeDraft) validateShape(creating bool) error {
	if len(d.ingredients) == 0 {
		return invalid("ingredients", "select at least one ingredient")
	}
	seen := make(map[uuid.UUID]struct{}, len(d.ingredients))
	for _, ing := range d.ingredients {
		if _, dup := seen[ing.ID]; dup {
			return invalid("ingredients", "ingredients must be unique")
		}
		seen[ing.ID] = struct{}{}
		if ing.Amount < models.MinAmount {
			return invalid("amount", fmt.Sprintf("amount must be at least %d", models.MinAmount))
		}
		if ing.Amount > models.MaxAmount {
			return invalid("amount", fmt.Sprintf("amount must be at most %d", models.MaxAmount))
		}
	}

	if len(d.tags) == 0 {
		return invalid("tags", "select at least one tag")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(d.tags))
	for _, id := range d.tags {
		if _, dup := seenTags[id]; dup {
			return invalid("tags", "tags must be unique")
		}
		seenTags[id] = struct{}{}
	}

	if d.cookingTime != nil || creating {
		ct := 0
		if d.cookingTime != nil {
			ct = *d.cookingTime
		}
		if ct < models.MinCookingTime {
			return invalid("cooking_time", fmt.Sprintf("cooking time must be at least %d minute", models.MinCookingTime))
		}
		if ct > models.MaxCookingTime {
			return invalid("cooking_time", fmt.Sprintf("cooking time must be at most %d minutes", models.MaxCookingTime))
		}
	}

	for _, f := range []struct {
		name  string
		value *string
	}{{"name", d.name}, {"image", d.image}, {"text", d.text}} {
		if f.value == nil {
			if creating {
				return invalid(f.name, "this field is required")
			}
			continue
		}
		if strings.TrimSpace(*f.value) == "" {
			return invalid(f.name, "this field may not be blank")
		}
	}
	if d.name != nil && utf8.RuneCountInString(*d.name) > models.MaxNameLength {
		return invalid("name", fmt.Sprintf("name must be at most %d characters", models.MaxNameLength))
	}
	return nil
}

// loadReferences resolves the referenced tags and checks every ingredient exists.
func (d recipeDraft) loadReferences(tx *gorm.DB) ([]models.Tag, error) {
	ids := make([]uuid.UUID, len(d.ingredients))
	for i, ing := range d.ingredients {
		ids[i] = ing.ID
	}
	var found int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return nil, err
	}
	if int(found) != len(ids) {
		return nil, invalid("ingredients", "ingredient does not exist")
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", d.tags).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(d.tags) {
		return nil, invalid("tags", "tag does not exist")
	}
	return tags, nil
}

func (d recipeDraft) apply(recipe *models.Recipe) {
	if d.name != nil {
		recipe.Name = *d.name
	}
	if d.image != nil {
		recipe.Image = *d.image
	}
	if d.text != nil {
		recipe.Text = *d.text
	}
	if d.cookingTime != nil {
		recipe.CookingTime = *d.cookingTime
	}
}
