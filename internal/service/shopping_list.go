package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListFilename is the attachment name of the downloaded list.
const ShoppingListFilename = "shopping_cart.txt"

const shoppingListQuery = `
SELECT i.name, i.measurement_unit, SUM(ri.amount) AS amount
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
JOIN shopping_cart_entries sc ON sc.recipe_id = ri.recipe_id
WHERE sc.user_id = ?
GROUP BY i.name, i.measurement_unit
ORDER BY i.name, i.measurement_unit`

// ShoppingListService aggregates the ingredients of every recipe in the
// actor's cart. It runs on sqlx since the result is a plain report.
type ShoppingListService struct {
	db *sqlx.DB
}

var _ IShoppingListService = (*ShoppingListService)(nil)

func NewShoppingListService(db *sqlx.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build sums amounts per (name, measurement unit) across the cart.
func (s *ShoppingListService) Build(ctx context.Context, actor *types.Actor) ([]types.ShoppingListItem, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	items := []types.ShoppingListItem{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(shoppingListQuery), actor.UserID.String()); err != nil {
		return nil, fmt.Errorf("build shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats one "name(unit) - amount" line per item.
func RenderShoppingList(items []types.ShoppingListItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s(%s) - %d", item.Name, item.MeasurementUnit, item.Amount)
	}
	return strings.Join(lines, "\n")
}
